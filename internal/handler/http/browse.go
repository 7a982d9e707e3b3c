package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// BrowseHandler handles HTTP requests for a session's product listing.
type BrowseHandler struct {
	service *service.BrowseService
	logger  *slog.Logger
}

// NewBrowseHandler creates a new browse HTTP handler.
func NewBrowseHandler(svc *service.BrowseService, logger *slog.Logger) *BrowseHandler {
	return &BrowseHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SetQueryRequest is the JSON request body for replacing the search query.
type SetQueryRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// SetPageRequest is the JSON request body for moving to another page.
type SetPageRequest struct {
	Page int `json:"page" validate:"gte=1,lte=1000000"`
}

// --- Handlers ---

// View handles GET /api/v1/browse
func (h *BrowseHandler) View(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.View(r.Context(), sessionID(r)))
}

// UpdateFilters handles PATCH /api/v1/browse/filters
func (h *BrowseHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if err := httputil.DecodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.respond(w, r)(h.service.UpdateFilter(r.Context(), sessionID(r), patch))
}

// ClearFilters handles DELETE /api/v1/browse/filters
func (h *BrowseHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.ClearFilters(r.Context(), sessionID(r)))
}

// SetQuery handles PUT /api/v1/browse/query
func (h *BrowseHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req SetQueryRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	h.respond(w, r)(h.service.SetQuery(r.Context(), sessionID(r), req.Query))
}

// SetPage handles PUT /api/v1/browse/page
func (h *BrowseHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req SetPageRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	h.respond(w, r)(h.service.SetPage(r.Context(), sessionID(r), req.Page))
}

func (h *BrowseHandler) respond(w http.ResponseWriter, r *http.Request) func(service.BrowseView, error) {
	return func(view service.BrowseView, err error) {
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		writeView(w, view, nil)
	}
}
