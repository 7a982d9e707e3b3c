package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/filter"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// BrowseView is one page of a filtered, sorted product listing.
type BrowseView struct {
	Products     []domain.Product     `json:"products"`
	Count        int                  `json:"count"`
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
	TotalPages   int                  `json:"total_pages"`
	VisiblePages []int                `json:"visible_pages"`
	Query        string               `json:"query"`
	Filters      domain.FilterOptions `json:"filters"`
}

// BrowseService runs the product filter engine over the catalog, either
// against a session's remembered browse state or statelessly.
type BrowseService struct {
	sessions Sessions
	products ProductSource
	perPage  int
	logger   *slog.Logger
}

// NewBrowseService creates a new browse service. perPage <= 0 uses the
// storefront default.
func NewBrowseService(sessions Sessions, products ProductSource, perPage int, logger *slog.Logger) *BrowseService {
	if perPage <= 0 {
		perPage = pagination.DefaultPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowseService{sessions: sessions, products: products, perPage: perPage, logger: logger}
}

// PerPage returns the configured page size.
func (s *BrowseService) PerPage() int {
	return s.perPage
}

// View renders the session's current listing.
func (s *BrowseService) View(ctx context.Context, sessionID string) (BrowseView, error) {
	state := s.sessions.Get(ctx, sessionID).Browse()
	return s.render(ctx, state, s.perPage)
}

// UpdateFilter merges patch into the session's filters.
func (s *BrowseService) UpdateFilter(ctx context.Context, sessionID string, patch domain.FilterPatch) (BrowseView, error) {
	merged := s.sessions.Get(ctx, sessionID).Browse().Filters.Merge(patch)
	if err := ValidateFilters(merged); err != nil {
		return BrowseView{}, err
	}
	return s.mutate(ctx, sessionID, func(b *domain.BrowseState) { b.UpdateFilter(patch) })
}

// SetQuery replaces the session's search query.
func (s *BrowseService) SetQuery(ctx context.Context, sessionID, query string) (BrowseView, error) {
	return s.mutate(ctx, sessionID, func(b *domain.BrowseState) { b.SetQuery(query) })
}

// ClearFilters drops the session's filters and query.
func (s *BrowseService) ClearFilters(ctx context.Context, sessionID string) (BrowseView, error) {
	return s.mutate(ctx, sessionID, func(b *domain.BrowseState) { b.ClearFilters() })
}

// SetPage moves the session to another page.
func (s *BrowseService) SetPage(ctx context.Context, sessionID string, page int) (BrowseView, error) {
	return s.mutate(ctx, sessionID, func(b *domain.BrowseState) { b.SetPage(page) })
}

// Search renders a listing without touching any session.
func (s *BrowseService) Search(ctx context.Context, query string, opts domain.FilterOptions, page, perPage int) (BrowseView, error) {
	if err := ValidateFilters(opts); err != nil {
		return BrowseView{}, err
	}
	if perPage <= 0 {
		perPage = s.perPage
	}
	state := domain.BrowseState{Query: query, Filters: opts, Page: pagination.ClampPage(page)}
	return s.render(ctx, state, perPage)
}

// Facets summarises the whole catalog for the filter sidebar.
func (s *BrowseService) Facets(ctx context.Context) (domain.Facets, error) {
	products, err := s.products.Products(ctx)
	if err != nil {
		return domain.Facets{}, err
	}
	return filter.FacetsOf(products), nil
}

// ValidateFilters rejects sort keys and orders the engine does not know.
func ValidateFilters(opts domain.FilterOptions) error {
	if !opts.SortBy.Valid() {
		return apperrors.InvalidInput(fmt.Sprintf("unknown sortBy %q", opts.SortBy))
	}
	switch opts.SortOrder {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown sortOrder %q", opts.SortOrder))
	}
	if !(opts.Rating >= 0 && opts.Rating <= 5) {
		return apperrors.InvalidInput("rating must be between 0 and 5")
	}
	return nil
}

func (s *BrowseService) mutate(ctx context.Context, sessionID string, fn func(*domain.BrowseState)) (BrowseView, error) {
	state := s.sessions.Get(ctx, sessionID).WithBrowse(fn)
	s.logger.DebugContext(ctx, "browse state changed",
		slog.String("session_id", sessionID),
		slog.String("query", state.Query),
		slog.Int("page", state.Page),
	)
	return s.render(ctx, state, s.perPage)
}

func (s *BrowseService) render(ctx context.Context, state domain.BrowseState, perPage int) (BrowseView, error) {
	products, err := s.products.Products(ctx)
	if err != nil {
		return BrowseView{}, err
	}

	result := filter.Run(products, state.Query, state.Filters)
	totalPages := pagination.TotalPages(result.Count, perPage)

	return BrowseView{
		Products:     pagination.Slice(result.Products, state.Page, perPage),
		Count:        result.Count,
		Page:         state.Page,
		PerPage:      perPage,
		TotalPages:   totalPages,
		VisiblePages: pagination.VisiblePages(state.Page, totalPages, pagination.DefaultWindow),
		Query:        state.Query,
		Filters:      state.Filters,
	}, nil
}
