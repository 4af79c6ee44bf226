package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gearbox/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the read-side interface for category data access
type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	var desc sql.NullString

	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&desc,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	category.Description = desc.String
	return category, nil
}

// List retrieves all categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		ORDER BY name ASC
	`, categoryColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE id = $1
	`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindBySlug retrieves a category by its routing slug
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE slug = $1
	`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	return category, nil
}
