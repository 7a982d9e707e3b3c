package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/utafrali/storefront/internal/provider"
)

// fakeAPI records the last checkout session request and answers with a
// canned response.
type fakeAPI struct {
	mu     sync.Mutex
	form   url.Values
	auth   string
	status int
	body   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/checkout/sessions" {
		http.NotFound(w, r)
		return
	}
	_ = r.ParseForm()

	f.mu.Lock()
	f.form = r.PostForm
	f.auth = r.Header.Get("Authorization")
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestProvider(t *testing.T, api *fakeAPI) *Provider {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{
		SecretKey:  "sk_test_123",
		APIURL:     srv.URL,
		HTTPClient: srv.Client(),
	}, nil)
	require.NoError(t, err)
	return p
}

func sampleInput() *provider.SessionInput {
	return &provider.SessionInput{
		Items: []provider.LineItem{
			{Name: "Premium Wireless Headphones", Description: "ANC", UnitAmount: 29999, Quantity: 2, Image: "https://img.example.com/1.jpg"},
			{Name: "USB-C Cable", UnitAmount: 1999, Quantity: 1},
		},
		Currency:   "USD",
		SuccessURL: "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "http://localhost:3000/checkout/cancelled",
		Metadata:   map[string]string{"storefront_session": "sess-1"},
	}
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(Config{}, nil)
	assert.Error(t, err)
}

func TestProvider_CreateCheckoutSession(t *testing.T) {
	api := &fakeAPI{
		status: http.StatusOK,
		body:   `{"id":"cs_test_123","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_123"}`,
	}
	p := newTestProvider(t, api)
	assert.Equal(t, "stripe", p.Name())

	sess, err := p.CreateCheckoutSession(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", sess.URL)

	api.mu.Lock()
	defer api.mu.Unlock()
	f := api.form
	assert.Equal(t, "Bearer sk_test_123", api.auth)
	assert.Equal(t, "payment", f.Get("mode"))
	assert.Equal(t, "card", f.Get("payment_method_types[0]"))
	assert.Equal(t, "required", f.Get("billing_address_collection"))
	assert.Equal(t, "US", f.Get("shipping_address_collection[allowed_countries][0]"))
	assert.Equal(t, "BE", f.Get("shipping_address_collection[allowed_countries][9]"))
	assert.Equal(t, "usd", f.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "29999", f.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", f.Get("line_items[0][quantity]"))
	assert.Equal(t, "Premium Wireless Headphones", f.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "https://img.example.com/1.jpg", f.Get("line_items[0][price_data][product_data][images][0]"))
	assert.Empty(t, f.Get("line_items[1][price_data][product_data][description]"))
	assert.Equal(t, "sess-1", f.Get("metadata[storefront_session]"))
	assert.Equal(t, "http://localhost:3000/checkout/cancelled", f.Get("cancel_url"))
}

func TestProvider_CreateCheckoutSession_Rejected(t *testing.T) {
	api := &fakeAPI{
		status: http.StatusBadRequest,
		body:   `{"error":{"type":"invalid_request_error","message":"Invalid currency: xyz"}}`,
	}
	p := newTestProvider(t, api)

	_, err := p.CreateCheckoutSession(context.Background(), sampleInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrRejected)
	assert.Contains(t, err.Error(), "Invalid currency")
}

func TestProvider_CreateCheckoutSession_ServerError(t *testing.T) {
	api := &fakeAPI{
		status: http.StatusInternalServerError,
		body:   `{"error":{"type":"api_error","message":"boom"}}`,
	}
	p := newTestProvider(t, api)

	_, err := p.CreateCheckoutSession(context.Background(), sampleInput())
	require.Error(t, err)
	assert.False(t, errors.Is(err, provider.ErrRejected))
}

func signedPayload(t *testing.T, secret string, evt map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestVerifier_VerifyWebhook(t *testing.T) {
	payload, header := signedPayload(t, "whsec_test", map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": "2020-08-27",
		"data":        map[string]any{"object": map[string]any{"id": "cs_test_123", "object": "checkout.session"}},
	})

	evt, err := NewVerifier("whsec_test").VerifyWebhook(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, provider.EventCheckoutSessionCompleted, evt.Type)
	assert.Equal(t, "cs_test_123", evt.ObjectID)
}

func TestVerifier_WrongSecret(t *testing.T) {
	payload, header := signedPayload(t, "whsec_other", map[string]any{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded",
		"data": map[string]any{"object": map[string]any{"id": "pi_1"}},
	})

	_, err := NewVerifier("whsec_test").VerifyWebhook(payload, header)
	assert.ErrorIs(t, err, provider.ErrInvalidSignature)
}

func TestVerifier_TamperedPayload(t *testing.T) {
	payload, header := signedPayload(t, "whsec_test", map[string]any{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded",
		"data": map[string]any{"object": map[string]any{"id": "pi_1"}},
	})
	payload = append(payload[:len(payload)-1], []byte(`,"x":1}`)...)

	_, err := NewVerifier("whsec_test").VerifyWebhook(payload, header)
	assert.ErrorIs(t, err, provider.ErrInvalidSignature)
}
