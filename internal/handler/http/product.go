package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	catalog *catalog.Catalog
	browse  *service.BrowseService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(c *catalog.Catalog, browse *service.BrowseService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: c, browse: browse, logger: logger}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, opts, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	page := pagination.FromRequest(r, h.browse.PerPage())

	view, err := h.browse.Search(r.Context(), query, opts, page.Page, page.PerPage)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, view, nil)
}

// Featured handles GET /api/v1/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, products, nil)
}

// Facets handles GET /api/v1/products/facets
func (h *ProductHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.browse.Facets(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, facets, nil)
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, product, nil)
}

// Categories handles GET /api/v1/categories
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, categories, nil)
}

// ByCategory handles GET /api/v1/categories/{category}/products
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	page := pagination.FromRequest(r, h.browse.PerPage())
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(
		pagination.Slice(products, page.Page, page.PerPage), len(products), page.Page, page.PerPage,
	))
}

// parseFilterQuery reads a stateless listing request. List values accept
// both repeated keys and comma separated values.
func parseFilterQuery(q url.Values) (string, domain.FilterOptions, error) {
	opts := domain.FilterOptions{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Brand:       listParam(q, "brand"),
		Colors:      listParam(q, "colors"),
		Sizes:       listParam(q, "sizes"),
		SortBy:      domain.SortBy(q.Get("sort_by")),
		SortOrder:   domain.SortOrder(q.Get("sort_order")),
	}

	var err error
	if opts.Rating, err = floatParam(q, "rating"); err != nil {
		return "", opts, err
	}
	if opts.InStock, err = boolParam(q, "in_stock"); err != nil {
		return "", opts, err
	}
	if opts.IsNew, err = boolParam(q, "is_new"); err != nil {
		return "", opts, err
	}
	if opts.IsFeatured, err = boolParam(q, "is_featured"); err != nil {
		return "", opts, err
	}

	if q.Has("min_price") || q.Has("max_price") {
		lo, err := floatParam(q, "min_price")
		if err != nil {
			return "", opts, err
		}
		hi := math.MaxFloat64
		if q.Has("max_price") {
			if hi, err = floatParam(q, "max_price"); err != nil {
				return "", opts, err
			}
		}
		if lo > hi {
			return "", opts, apperrors.InvalidInput("min_price must not exceed max_price")
		}
		opts.PriceRange = &domain.PriceRange{lo, hi}
	}

	return q.Get("q"), opts, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be a number", key))
	}
	return v, nil
}

func boolParam(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.InvalidInput(fmt.Sprintf("%s must be true or false", key))
	}
	return v, nil
}
