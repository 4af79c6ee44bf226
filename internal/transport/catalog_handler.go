package transport

import (
	"errors"
	"net/http"
	"strconv"

	"gearbox/internal/domain"
	"gearbox/internal/middleware"
	"gearbox/internal/repository"
	"gearbox/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductsResponse is the paginated listing payload
type ProductsResponse struct {
	Products []*domain.ProductWithCategory `json:"products"`
	Total    int                           `json:"total"`
	Page     int                           `json:"page"`
	Limit    int                           `json:"limit"`
}

// CategoriesResponse wraps the category listing
type CategoriesResponse struct {
	Categories []*domain.Category `json:"categories"`
	Total      int                `json:"total"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Query    string                        `json:"query"`
	Products []*domain.ProductWithCategory `json:"products"`
	Total    int                           `json:"total"`
}

// CatalogHandler handles HTTP requests for the public catalog
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all catalog routes on the API router
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{slug}", h.GetProduct)
	r.Get("/products/{slug}/faq", h.GetProductFAQ)
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{slug}", h.GetCategory)
	r.Get("/categories/{slug}/products", h.ProductsByCategory)
	r.Get("/search", h.Search)
}

// parseBoolParam reads an optional boolean query parameter. Absent or
// unparseable values mean "no constraint", never false.
func parseBoolParam(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// parseIntParam reads an optional non-negative integer query parameter,
// coercing anything invalid to zero
func parseIntParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ListProducts handles the filtered, sorted, paginated product listing
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit")
	offset := parseIntParam(r, "offset")

	// Page-style pagination is sugar over limit/offset
	if page := parseIntParam(r, "page"); page > 0 {
		if limit <= 0 {
			limit = repository.DefaultPageSize
		}
		offset = (page - 1) * limit
	}

	opts := service.ListOptions{
		CategorySlug: r.URL.Query().Get("category"),
		Featured:     parseBoolParam(r, "featured"),
		InStock:      parseBoolParam(r, "in_stock"),
		Sort:         service.SortKey(r.URL.Query().Get("sort")),
		Limit:        limit,
		Offset:       offset,
	}

	products, total, err := h.catalog.ListProducts(r.Context(), opts)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	if limit <= 0 {
		limit = repository.DefaultPageSize
	}
	middleware.RespondWithJSON(w, http.StatusOK, ProductsResponse{
		Products: products,
		Total:    total,
		Page:     offset/limit + 1,
		Limit:    limit,
	})
}

// GetProduct handles the published product detail lookup
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetProduct(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetProductFAQ returns the derived FAQ section for a product
func (h *CatalogHandler) GetProductFAQ(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetProduct(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product for FAQ", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, service.GenerateFAQ(product.Product))
}

// ListCategories handles the category listing
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// GetCategory handles the category detail lookup
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	category, err := h.catalog.GetCategory(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to get category", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ProductsByCategory lists the published products of one category. An
// unknown slug is a 404; a known category with no products is an empty list.
func (h *CatalogHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	products, err := h.catalog.ProductsByCategory(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to list category products", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductsResponse{
		Products: products,
		Total:    len(products),
		Page:     1,
		Limit:    len(products),
	})
}

// Search handles free-text product search. An empty query is a dead URL and
// renders as not found, matching the storefront's search page policy.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	opts := service.SearchOptions{
		CategorySlug: r.URL.Query().Get("category"),
		MinPrice:     service.ParsePriceBound(r.URL.Query().Get("min_price")),
		MaxPrice:     service.ParsePriceBound(r.URL.Query().Get("max_price")),
	}

	products, err := h.catalog.Search(r.Context(), query, opts)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			middleware.RespondWithError(w, http.StatusNotFound, "page not found")
			return
		}
		h.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SearchResponse{
		Query:    query,
		Products: products,
		Total:    len(products),
	})
}
