package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// ContainsResponse reports whether a product is saved.
type ContainsResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// Get handles GET /api/v1/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.service.Get(r.Context(), sessionID(r)), nil)
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddWishlistItemInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.AddItem(r.Context(), sessionID(r), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, view, view.Notice)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view := h.service.RemoveItem(r.Context(), sessionID(r), chi.URLParam(r, "productId"))
	writeView(w, view, view.Notice)
}

// Contains handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	writeView(w, ContainsResponse{
		ProductID:  productID,
		InWishlist: h.service.Contains(r.Context(), sessionID(r), productID),
	}, nil)
}

// Clear handles DELETE /api/v1/wishlist
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view := h.service.Clear(r.Context(), sessionID(r))
	writeView(w, view, view.Notice)
}

// Toggle handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.service.Toggle(r.Context(), sessionID(r)), nil)
}
