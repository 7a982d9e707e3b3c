package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// SignatureHeader carries the payment provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// CheckoutHandler handles HTTP requests for checkout and payment webhooks.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// WebhookResponse acknowledges a processed webhook.
type WebhookResponse struct {
	Received bool `json:"received"`
}

// ShippingOptions handles GET /api/v1/checkout/shipping-options
func (h *CheckoutHandler) ShippingOptions(w http.ResponseWriter, r *http.Request) {
	writeView(w, domain.ShippingOptions(), nil)
}

// Summary handles GET /api/v1/checkout/summary
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeView(w, h.service.Summary(r.Context(), sessionID(r), r.URL.Query().Get("shipping")), nil)
}

// CreateSession handles POST /api/v1/checkout/session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionInput
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	out, err := h.service.CreateSession(r.Context(), sessionID(r), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeView(w, out, nil)
}

// Webhook handles POST /api/v1/webhooks/stripe. The body is verified
// byte for byte, so it is read raw.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, apperrors.InvalidInput("request body too large"), h.logger)
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("failed to read request body"), h.logger)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(SignatureHeader)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WebhookResponse{Received: true})
}
