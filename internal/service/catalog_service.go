package service

import (
	"context"
	"errors"
	"strings"

	"gearbox/internal/domain"
	"gearbox/internal/repository"
)

var (
	ErrEmptyQuery = errors.New("search query is empty")
)

// SortKey names the sort orders exposed to clients
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
)

// sortColumn maps a sort key onto a repository column and direction
func (k SortKey) sortColumn() (string, repository.SortOrder) {
	switch k {
	case SortPriceLow:
		return "price", repository.SortOrderAsc
	case SortPriceHigh:
		return "price", repository.SortOrderDesc
	case SortRating:
		return "rating", repository.SortOrderDesc
	default:
		return "created_at", repository.SortOrderDesc
	}
}

// ListOptions describes a product listing request. Nil pointers mean
// "no constraint".
type ListOptions struct {
	CategorySlug string
	Featured     *bool
	InStock      *bool
	Sort         SortKey
	Limit        int
	Offset       int
}

// SearchOptions narrows a text search
type SearchOptions struct {
	CategorySlug string
	MinPrice     *float64
	MaxPrice     *float64
}

// CatalogService defines the read-side business logic over the catalog
type CatalogService interface {
	ListProducts(ctx context.Context, opts ListOptions) ([]*domain.ProductWithCategory, int, error)
	GetProduct(ctx context.Context, slug string) (*domain.ProductWithCategory, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]*domain.ProductWithCategory, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, slug string) (*domain.Category, error)
	ProductsByCategory(ctx context.Context, slug string) ([]*domain.ProductWithCategory, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts returns published products matching opts plus the total match
// count. A category slug that resolves to nothing yields an empty list; only
// detail lookups treat unknown slugs as not-found.
func (s *catalogService) ListProducts(ctx context.Context, opts ListOptions) ([]*domain.ProductWithCategory, int, error) {
	filter := repository.ProductFilter{
		Featured: opts.Featured,
		InStock:  opts.InStock,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}

	if opts.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, opts.CategorySlug)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return []*domain.ProductWithCategory{}, 0, nil
			}
			return nil, 0, err
		}
		filter.CategoryID = &category.ID
	}

	sortBy, order := opts.Sort.sortColumn()
	return s.productRepo.List(ctx, filter, sortBy, order)
}

// GetProduct returns a single published product by slug
func (s *catalogService) GetProduct(ctx context.Context, slug string) (*domain.ProductWithCategory, error) {
	return s.productRepo.FindBySlug(ctx, slug)
}

// Search runs a case-insensitive substring search over title, description,
// and brand. A blank query is a caller error; the page layer is expected to
// short-circuit before getting here.
func (s *catalogService) Search(ctx context.Context, query string, opts SearchOptions) ([]*domain.ProductWithCategory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	filter := repository.SearchFilter{
		MinPrice: opts.MinPrice,
		MaxPrice: opts.MaxPrice,
	}

	if opts.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, opts.CategorySlug)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return []*domain.ProductWithCategory{}, nil
			}
			return nil, err
		}
		filter.CategoryID = &category.ID
	}

	return s.productRepo.Search(ctx, query, filter)
}

// ListCategories returns all categories ordered by name
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

// GetCategory returns a category by slug
func (s *catalogService) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	return s.categoryRepo.FindBySlug(ctx, slug)
}

// ProductsByCategory returns the published products of the named category.
// Unlike ListProducts, an unknown slug here is a not-found error so the page
// layer can render a 404 for a dead category URL.
func (s *catalogService) ProductsByCategory(ctx context.Context, slug string) ([]*domain.ProductWithCategory, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	filter := repository.ProductFilter{CategoryID: &category.ID}
	products, _, err := s.productRepo.List(ctx, filter, "created_at", repository.SortOrderDesc)
	return products, err
}
