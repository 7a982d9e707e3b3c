package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// ItemQuantityResponse reports how many units of a product are in the cart.
type ItemQuantityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.service.Get(r.Context(), sessionID(r)), nil)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
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

// UpdateQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateQuantityInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	view, err := h.service.UpdateQuantity(r.Context(), sessionID(r), chi.URLParam(r, "itemId"), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, view, view.Notice)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view := h.service.RemoveItem(r.Context(), sessionID(r), chi.URLParam(r, "itemId"))
	writeView(w, view, view.Notice)
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view := h.service.Clear(r.Context(), sessionID(r))
	writeView(w, view, view.Notice)
}

// Toggle handles POST /api/v1/cart/toggle
func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.service.Toggle(r.Context(), sessionID(r)), nil)
}

// ItemQuantity handles GET /api/v1/cart/products/{productId}/quantity
func (h *CartHandler) ItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	writeView(w, ItemQuantityResponse{
		ProductID: productID,
		Quantity:  h.service.ItemQuantity(r.Context(), sessionID(r), productID),
	}, nil)
}
