package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gearbox/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// productColumns is the select list shared by every product query, with the
// category joined in when the product has one
const productColumns = `
	p.id, p.slug, p.title, p.short_description, p.description,
	p.price, p.original_price, p.currency,
	p.main_image_url, p.additional_images,
	p.affiliate_url, p.brand_name,
	p.rating, p.review_count, p.youtube_video_id,
	p.specifications, p.pros, p.cons,
	p.in_stock, p.featured, p.is_published,
	p.category_id, p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

// ProductRepository defines the read-side interface for product data access.
// Every method only ever returns published products.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter, sortBy string, order SortOrder) ([]*domain.ProductWithCategory, int, error)
	FindBySlug(ctx context.Context, slug string) (*domain.ProductWithCategory, error)
	Search(ctx context.Context, query string, filter SearchFilter) ([]*domain.ProductWithCategory, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct reads one joined row. Category columns come back NULL when the
// product has no category, hence the intermediate nullables.
func scanProduct(row rowScanner) (*domain.ProductWithCategory, error) {
	p := &domain.ProductWithCategory{}

	var (
		shortDesc  sql.NullString
		desc       sql.NullString
		origPrice  sql.NullFloat64
		brand      sql.NullString
		youtubeID  sql.NullString
		categoryID sql.NullString
		catID      sql.NullString
		catName    sql.NullString
		catSlug    sql.NullString
		catDesc    sql.NullString
		catCreated sql.NullTime
		catUpdated sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &shortDesc, &desc,
		&p.Price, &origPrice, &p.Currency,
		&p.MainImageURL, &p.AdditionalImages,
		&p.AffiliateURL, &brand,
		&p.Rating, &p.ReviewCount, &youtubeID,
		&p.Specs, &p.Pros, &p.Cons,
		&p.InStock, &p.Featured, &p.IsPublished,
		&categoryID, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catSlug, &catDesc, &catCreated, &catUpdated,
	)
	if err != nil {
		return nil, err
	}

	p.ShortDescription = shortDesc.String
	p.Description = desc.String
	p.BrandName = brand.String
	p.YouTubeVideoID = youtubeID.String
	if origPrice.Valid {
		p.OriginalPrice = &origPrice.Float64
	}
	if categoryID.Valid {
		id, err := uuid.Parse(categoryID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		p.CategoryID = &id
	}
	if catID.Valid {
		id, err := uuid.Parse(catID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid joined category id: %w", err)
		}
		p.Category = &domain.Category{
			ID:          id,
			Name:        catName.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
			CreatedAt:   catCreated.Time,
			UpdatedAt:   catUpdated.Time,
		}
	}

	return p, nil
}

// List retrieves published products with optional equality filters, bounded
// pagination, and a whitelisted sort. The second return value is the total
// number of matching rows. A category id that matches nothing yields an
// empty list, not an error.
func (r *productRepository) List(ctx context.Context, filter ProductFilter, sortBy string, order SortOrder) ([]*domain.ProductWithCategory, int, error) {
	q := newPublicProductQuery()
	q.applyFilter(filter)

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", productFrom, q.whereClause())
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s %s %s %s %s",
		productColumns,
		productFrom,
		q.whereClause(),
		orderClause(sortBy, order),
		q.limitClause(filter.Limit, filter.Offset),
	)

	rows, err := r.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductWithCategory{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// FindBySlug retrieves a single published product by slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.ProductWithCategory, error) {
	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE p.is_published = TRUE AND p.slug = $1
	`, productColumns, productFrom)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}

	return product, nil
}

// Search matches the query substring case-insensitively against title,
// description, and brand, intersected with the optional filters. Results
// keep the default newest-first order; any further ranking is the caller's
// concern.
func (r *productRepository) Search(ctx context.Context, query string, filter SearchFilter) ([]*domain.ProductWithCategory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	q := newPublicProductQuery()
	q.applySearch(query, filter)

	searchQuery := fmt.Sprintf("SELECT %s %s %s %s",
		productColumns,
		productFrom,
		q.whereClause(),
		orderClause("created_at", SortOrderDesc),
	)

	rows, err := r.db.QueryContext(ctx, searchQuery, q.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.ProductWithCategory{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return products, nil
}
