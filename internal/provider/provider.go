package provider

import (
	"context"
	"encoding/json"
	"errors"
)

// Webhook event types the storefront reacts to.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

var (
	// ErrInvalidSignature is returned when a webhook payload does not match
	// its signature header.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrRejected marks a request the provider refused as invalid. These are
	// the caller's fault and do not count against the provider's health.
	ErrRejected = errors.New("rejected by payment provider")
)

// LineItem is one hosted-checkout line. UnitAmount is in minor units.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	Image       string
}

// SessionInput holds the parameters for creating a hosted checkout session.
type SessionInput struct {
	Items         []LineItem
	Currency      string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// Session is a created hosted checkout session.
type Session struct {
	ID  string
	URL string
}

// WebhookEvent is a verified provider notification.
type WebhookEvent struct {
	ID   string
	Type string
	// ObjectID is the id of the session or payment intent the event is about.
	ObjectID string
	Object   json.RawMessage
}

// Provider defines the interface for payment provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateCheckoutSession opens a hosted payment page for the given items.
	CreateCheckoutSession(ctx context.Context, input *SessionInput) (*Session, error)
}

// WebhookVerifier authenticates inbound webhook payloads.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
