package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	providermock "github.com/utafrali/storefront/internal/provider/mock"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/middleware"
)

func TestCheckoutHandler_ShippingOptions(t *testing.T) {
	h := newTestRouter(t, testOptions{})

	options := decodeData[[]domain.ShippingOption](t, do(t, h, http.MethodGet, "/api/v1/checkout/shipping-options", "", nil))
	require.Len(t, options, 3)
	assert.Equal(t, "express", options[1].ID)
	assert.InDelta(t, 15.0, options[1].Price, 1e-9)
}

func TestCheckoutHandler_Summary(t *testing.T) {
	h := newTestRouter(t, testOptions{})
	do(t, h, http.MethodPost, "/api/v1/cart/items", "sess-1", map[string]any{"product_id": "1", "quantity": 2})

	view := decodeData[service.SummaryView](t, do(t, h, http.MethodGet, "/api/v1/checkout/summary?shipping=overnight", "sess-1", nil))
	assert.Equal(t, "overnight", view.ShippingID)
	assert.InDelta(t, 599.98, view.Subtotal, 1e-9)
	assert.InDelta(t, 30.0, view.Shipping, 1e-9)
	assert.InDelta(t, 48.0, view.Tax, 1e-9)
	assert.Equal(t, "$677.98", view.TotalDisplay)
}

func TestCheckoutHandler_CreateSession_FromCart(t *testing.T) {
	h := newTestRouter(t, testOptions{})
	do(t, h, http.MethodPost, "/api/v1/cart/items", "sess-1", map[string]any{"product_id": "5"})

	rec := do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decodeData[domain.CheckoutSession](t, rec)
	assert.True(t, strings.HasPrefix(out.SessionID, "cs_mock_"))
	assert.Equal(t, "http://shop.test/checkout/success?session_id="+out.SessionID, out.URL)
	assert.Contains(t, rec.Body.String(), `"session_id"`)
}

func TestCheckoutHandler_CreateSession_ExplicitItems(t *testing.T) {
	h := newTestRouter(t, testOptions{})

	rec := do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-1", map[string]any{
		"items": []map[string]any{{"name": "Gift card", "price": 25, "quantity": 1}},
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCheckoutHandler_CreateSession_NoItems(t *testing.T) {
	h := newTestRouter(t, testOptions{})

	rec := do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-1", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No items provided", decode(t, rec).Error.Message)
}

func TestCheckoutHandler_CreateSession_RateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 1, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rl.Run(ctx)

	h := newTestRouter(t, testOptions{rateLimiter: rl})
	body := map[string]any{"items": []map[string]any{{"name": "Lamp", "price": 10, "quantity": 1}}}

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-1", body).Code)
	rec := do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-1", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode(t, rec).Error.Code)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/checkout/session", "sess-2", body).Code,
		"limits are per session")
}

func webhookRequest(body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	return req
}

func TestCheckoutHandler_Webhook(t *testing.T) {
	h := newTestRouter(t, testOptions{verifier: providermock.Verifier{}})
	payload := `{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(payload, providermock.SignatureHeaderValue))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, webhookRequest(`{"id":"evt_2","type":"invoice.paid"}`, providermock.SignatureHeaderValue))
	assert.Equal(t, http.StatusOK, rec.Code, "unhandled types are acknowledged")
}

func TestCheckoutHandler_Webhook_Errors(t *testing.T) {
	tests := []struct {
		name      string
		verify    bool
		signature string
		status    int
		message   string
	}{
		{"secret not configured", false, providermock.SignatureHeaderValue, http.StatusInternalServerError, "Webhook secret not configured"},
		{"missing signature", true, "", http.StatusBadRequest, "Missing stripe-signature header"},
		{"invalid signature", true, "t=1,v1=deadbeef", http.StatusBadRequest, "Invalid signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions{}
			if tt.verify {
				opts.verifier = providermock.Verifier{}
			}
			h := newTestRouter(t, opts)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, webhookRequest(`{"id":"evt_1"}`, tt.signature))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec).Error.Message)
		})
	}
}
