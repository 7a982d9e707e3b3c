package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/provider"
	providermock "github.com/utafrali/storefront/internal/provider/mock"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/validator"
)

// --- Stub Provider ---

type stubProvider struct {
	err   error
	calls int
	last  *provider.SessionInput
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) CreateCheckoutSession(_ context.Context, input *provider.SessionInput) (*provider.Session, error) {
	p.calls++
	p.last = input
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Session{ID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}

// --- Test Helpers ---

func testBreaker(name string) httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func newTestCheckout(t *testing.T, p provider.Provider, v provider.WebhookVerifier, pub event.Publisher) (*CheckoutService, *session.Registry) {
	t.Helper()
	registry, _ := newTestRegistry()
	svc := NewCheckoutService(registry, p, v, pub, CheckoutConfig{
		BaseURL:  "https://shop.example.com/",
		Currency: "USD",
		Breaker:  testBreaker("payment-" + t.Name()),
	}, newTestLogger())
	return svc, registry
}

func fillCart(t *testing.T, registry *session.Registry, sessionID string) {
	t.Helper()
	products, err := newTestCatalog(t).Products(context.Background())
	require.NoError(t, err)

	cart := registry.Get(context.Background(), sessionID).Cart
	cart.AddItem(context.Background(), products[0], 2, store.ItemOptions{})  // 299.99
	cart.AddItem(context.Background(), products[12], 1, store.ItemOptions{}) // 39.99
}

func cartOf(items ...domain.CartItem) domain.CartState {
	s := domain.CartState{Items: items}
	s.Recalculate()
	return s
}

func priced(price float64, qty int) domain.CartItem {
	return domain.CartItem{Product: domain.Product{ID: fmt.Sprint(price), Price: price}, Quantity: qty}
}

// --- Summary ---

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name     string
		cart     domain.CartState
		shipping string
		want     domain.OrderSummary
	}{
		{
			name:     "standard ships free",
			cart:     cartOf(priced(100, 1)),
			shipping: "standard",
			want:     domain.OrderSummary{Subtotal: 100, Shipping: 0, Tax: 8, Total: 108, ItemCount: 1},
		},
		{
			name:     "express",
			cart:     cartOf(priced(299.99, 2), priced(39.99, 1)),
			shipping: "express",
			want:     domain.OrderSummary{Subtotal: 639.97, Shipping: 15, Tax: 51.2, Total: 706.17, ItemCount: 3},
		},
		{
			name:     "overnight",
			cart:     cartOf(priced(10, 3)),
			shipping: "overnight",
			want:     domain.OrderSummary{Subtotal: 30, Shipping: 30, Tax: 2.4, Total: 62.4, ItemCount: 3},
		},
		{
			name:     "unknown shipping id is free",
			cart:     cartOf(priced(50, 1)),
			shipping: "teleport",
			want:     domain.OrderSummary{Subtotal: 50, Shipping: 0, Tax: 4, Total: 54, ItemCount: 1},
		},
		{
			name:     "empty cart",
			cart:     cartOf(),
			shipping: "express",
			want:     domain.OrderSummary{Shipping: 15, Total: 15},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSummary(tt.cart, tt.shipping, DefaultTaxRate))
		})
	}
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(29999), ToMinorUnits(299.99))
	assert.Equal(t, int64(1), ToMinorUnits(0.005))
	assert.Equal(t, int64(1000), ToMinorUnits(10))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
}

func TestLineItemsFromCart(t *testing.T) {
	cart := cartOf(domain.CartItem{
		Product:  domain.Product{Name: "Lamp", Description: "Bright", Price: 25, Images: []string{"https://img/1.jpg", "https://img/2.jpg"}},
		Quantity: 2,
	}, priced(5, 1))

	items := LineItemsFromCart(cart)
	require.Len(t, items, 2)
	assert.Equal(t, domain.LineItem{Name: "Lamp", Description: "Bright", Price: 25, Quantity: 2, Image: "https://img/1.jpg"}, items[0])
	assert.Empty(t, items[1].Image)
}

func TestCheckoutService_Summary(t *testing.T) {
	svc, registry := newTestCheckout(t, providermock.NewProvider(), nil, nil)
	fillCart(t, registry, "sess-1")

	view := svc.Summary(context.Background(), "sess-1", "")
	assert.Equal(t, "standard", view.ShippingID)
	assert.InDelta(t, 639.97, view.Subtotal, 1e-9)
	assert.Equal(t, "$639.97", view.SubtotalDisplay)
	assert.Equal(t, "$0.00", view.ShippingDisplay)
	assert.Equal(t, "$51.20", view.TaxDisplay)
	assert.Equal(t, "$691.17", view.TotalDisplay)
}

// --- CreateSession ---

func TestCheckoutService_CreateSession_FromCart(t *testing.T) {
	p := &stubProvider{}
	pub := new(mockPublisher)
	pub.On("CheckoutSessionCreated", mock.Anything, event.CheckoutSessionCreatedData{
		SessionID:         "sess-1",
		CheckoutSessionID: "cs_test_1",
		Provider:          "stub",
		ItemCount:         3,
		AmountTotal:       63997,
		Currency:          "usd",
	}).Return(nil).Once()
	svc, registry := newTestCheckout(t, p, nil, pub)
	fillCart(t, registry, "sess-1")

	out, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", out.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_test_1", out.URL)
	require.NotNil(t, p.last)
	assert.Equal(t, "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}", p.last.SuccessURL)
	assert.Equal(t, "https://shop.example.com/checkout/cancelled", p.last.CancelURL)
	require.Len(t, p.last.Items, 2)
	assert.Equal(t, int64(29999), p.last.Items[0].UnitAmount)
	assert.Equal(t, int64(2), p.last.Items[0].Quantity)
	assert.Equal(t, "sess-1", p.last.Metadata["session_id"])
	assert.Len(t, registry.Get(context.Background(), "sess-1").Cart.State().Items, 2, "cart is kept")
	pub.AssertExpectations(t)
}

func TestCheckoutService_CreateSession_ExplicitItems(t *testing.T) {
	p := &stubProvider{}
	svc, _ := newTestCheckout(t, p, nil, nil)

	_, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{
		Items:      []domain.LineItem{{Name: "Gift card", Price: 19.995, Quantity: 1}},
		SuccessURL: "https://other.example.com/done",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), p.last.Items[0].UnitAmount)
	assert.Equal(t, "https://other.example.com/done", p.last.SuccessURL)
}

func TestCheckoutService_CreateSession_NoItems(t *testing.T) {
	p := &stubProvider{}
	svc, _ := newTestCheckout(t, p, nil, nil)

	_, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "No items provided")
	assert.Zero(t, p.calls)
}

func TestCheckoutService_CreateSession_InvalidItems(t *testing.T) {
	p := &stubProvider{}
	svc, _ := newTestCheckout(t, p, nil, nil)

	_, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{
		Items: []domain.LineItem{{Name: "", Price: -1, Quantity: 0}},
	})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "name")
	assert.Contains(t, valErr.Fields(), "quantity")
	assert.Zero(t, p.calls)
}

func TestCheckoutService_CreateSession_ProviderErrors(t *testing.T) {
	items := []domain.LineItem{{Name: "Lamp", Price: 10, Quantity: 1}}

	t.Run("rejected maps to bad request", func(t *testing.T) {
		p := &stubProvider{err: fmt.Errorf("%w: invalid currency", provider.ErrRejected)}
		svc, _ := newTestCheckout(t, p, nil, nil)

		_, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{Items: items})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("failure maps to bad gateway", func(t *testing.T) {
		p := &stubProvider{err: errors.New("connection reset")}
		svc, _ := newTestCheckout(t, p, nil, nil)

		_, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{Items: items})
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.Equal(t, 502, apperrors.HTTPStatus(err))
	})
}

func TestCheckoutService_CreateSession_BreakerOpens(t *testing.T) {
	p := &stubProvider{err: errors.New("timeout")}
	svc, _ := newTestCheckout(t, p, nil, nil)
	ctx := context.Background()
	input := CreateSessionInput{Items: []domain.LineItem{{Name: "Lamp", Price: 10, Quantity: 1}}}

	for range 2 {
		_, err := svc.CreateSession(ctx, "sess-1", input)
		require.ErrorIs(t, err, apperrors.ErrUpstream)
	}

	_, err := svc.CreateSession(ctx, "sess-1", input)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 2, p.calls, "open breaker short-circuits the provider")
}

func TestCheckoutService_CreateSession_RejectionsDoNotTrip(t *testing.T) {
	p := &stubProvider{err: provider.ErrRejected}
	svc, _ := newTestCheckout(t, p, nil, nil)
	input := CreateSessionInput{Items: []domain.LineItem{{Name: "Lamp", Price: 10, Quantity: 1}}}

	for range 4 {
		_, err := svc.CreateSession(context.Background(), "sess-1", input)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	assert.Equal(t, 4, p.calls)
}

func TestCheckoutService_CreateSession_MockProvider(t *testing.T) {
	svc, registry := newTestCheckout(t, providermock.NewProvider(), nil, nil)
	fillCart(t, registry, "sess-1")

	out, err := svc.CreateSession(context.Background(), "sess-1", CreateSessionInput{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.SessionID, "cs_mock_"))
	assert.Equal(t, "https://shop.example.com/checkout/success?session_id="+out.SessionID, out.URL)
}

// --- Webhook ---

func webhookPayload(id, typ, objectID string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"type":%q,"data":{"object":{"id":%q}}}`, id, typ, objectID))
}

func TestCheckoutService_HandleWebhook_Guards(t *testing.T) {
	ctx := context.Background()

	unconfigured, _ := newTestCheckout(t, &stubProvider{}, nil, nil)
	err := unconfigured.HandleWebhook(ctx, []byte(`{}`), providermock.SignatureHeaderValue)
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "Webhook secret not configured")

	svc, _ := newTestCheckout(t, &stubProvider{}, providermock.Verifier{}, nil)

	err = svc.HandleWebhook(ctx, []byte(`{}`), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Missing stripe-signature header")

	err = svc.HandleWebhook(ctx, []byte(`{}`), "forged")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Invalid signature")
}

func TestCheckoutService_HandleWebhook_Dispatch(t *testing.T) {
	tests := []struct {
		eventType string
		method    string
	}{
		{provider.EventCheckoutSessionCompleted, "PaymentCompleted"},
		{provider.EventPaymentIntentSucceeded, "PaymentCompleted"},
		{provider.EventPaymentIntentFailed, "PaymentFailed"},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			pub := new(mockPublisher)
			pub.On(tt.method, mock.Anything, event.PaymentData{
				ProviderEventID: "evt_1",
				EventType:       tt.eventType,
				ObjectID:        "obj_1",
			}).Return(nil).Once()
			svc, _ := newTestCheckout(t, &stubProvider{}, providermock.Verifier{}, pub)

			err := svc.HandleWebhook(context.Background(), webhookPayload("evt_1", tt.eventType, "obj_1"), providermock.SignatureHeaderValue)
			require.NoError(t, err)
			pub.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_HandleWebhook_UnhandledType(t *testing.T) {
	pub := new(mockPublisher)
	svc, _ := newTestCheckout(t, &stubProvider{}, providermock.Verifier{}, pub)

	err := svc.HandleWebhook(context.Background(), webhookPayload("evt_2", "customer.created", "cus_1"), providermock.SignatureHeaderValue)
	require.NoError(t, err)
	pub.AssertNotCalled(t, "PaymentCompleted", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PaymentFailed", mock.Anything, mock.Anything)
}

func TestCheckoutService_HandleWebhook_PublishFailureIsSwallowed(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PaymentFailed", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc, _ := newTestCheckout(t, &stubProvider{}, providermock.Verifier{}, pub)

	err := svc.HandleWebhook(context.Background(), webhookPayload("evt_3", provider.EventPaymentIntentFailed, "pi_1"), providermock.SignatureHeaderValue)
	assert.NoError(t, err)
}
