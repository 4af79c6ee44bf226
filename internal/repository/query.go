package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize bounds queries that paginate without an explicit limit
	DefaultPageSize = 24

	// MaxPageSize caps any caller-provided limit
	MaxPageSize = 100
)

// ProductFilter describes an optional filter set for listing products.
// Nil pointer fields mean "no constraint", not false.
type ProductFilter struct {
	CategoryID *uuid.UUID
	Featured   *bool
	InStock    *bool
	Limit      int
	Offset     int
}

// SearchFilter narrows a text search. Price bounds are inclusive.
type SearchFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
}

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// productQuery accumulates WHERE conditions and their arguments with
// positional placeholders, the way all catalog queries are assembled.
type productQuery struct {
	conds []string
	args  []interface{}
}

// newPublicProductQuery starts a query for any public-facing read. The
// published condition is applied unconditionally here; callers cannot opt
// out of it.
func newPublicProductQuery() *productQuery {
	return &productQuery{
		conds: []string{"p.is_published = TRUE"},
	}
}

// where appends a condition containing a single placeholder for arg
func (q *productQuery) where(cond string, arg interface{}) {
	q.args = append(q.args, arg)
	q.conds = append(q.conds, fmt.Sprintf(cond, len(q.args)))
}

// applyFilter adds the optional equality filters from f
func (q *productQuery) applyFilter(f ProductFilter) {
	if f.CategoryID != nil {
		q.where("p.category_id = $%d", *f.CategoryID)
	}
	if f.Featured != nil {
		q.where("p.featured = $%d", *f.Featured)
	}
	if f.InStock != nil {
		q.where("p.in_stock = $%d", *f.InStock)
	}
}

// applySearch adds the case-insensitive multi-field substring match plus the
// optional search filters
func (q *productQuery) applySearch(query string, f SearchFilter) {
	pattern := "%" + query + "%"
	q.args = append(q.args, pattern)
	n := len(q.args)
	q.conds = append(q.conds, fmt.Sprintf(
		"(p.title ILIKE $%d OR p.description ILIKE $%d OR p.brand_name ILIKE $%d)", n, n, n))

	if f.CategoryID != nil {
		q.where("p.category_id = $%d", *f.CategoryID)
	}
	if f.MinPrice != nil {
		q.where("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q.where("p.price <= $%d", *f.MaxPrice)
	}
}

// whereClause renders the accumulated conditions
func (q *productQuery) whereClause() string {
	return "WHERE " + strings.Join(q.conds, " AND ")
}

// validSortColumns whitelists sortable columns to keep ORDER BY injection-safe
var validSortColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"rating":     true,
	"title":      true,
}

// orderClause renders a safe ORDER BY, defaulting to newest first
func orderClause(sortBy string, order SortOrder) string {
	if !validSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		order = SortOrderDesc
	}
	return fmt.Sprintf("ORDER BY p.%s %s", sortBy, order)
}

// limitClause appends bounded pagination. An offset without a limit gets the
// default page size so no query is ever unbounded.
func (q *productQuery) limitClause(limit, offset int) string {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	q.args = append(q.args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(q.args)-1, len(q.args))
}
