package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated            = "storefront.cart.updated"
	TopicCartCleared            = "storefront.cart.cleared"
	TopicWishlistUpdated        = "storefront.wishlist.updated"
	TopicCheckoutSessionCreated = "storefront.checkout.session_created"
	TopicPaymentCompleted       = "storefront.payment.completed"
	TopicPaymentFailed          = "storefront.payment.failed"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeCheckout = "checkout_session"
)

// CartUpdatedData is the payload for cart.updated and cart.cleared events.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	Change    domain.ChangeKind `json:"change"`
	ItemID    string            `json:"item_id,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	Quantity  int               `json:"quantity,omitempty"`
	ItemCount int               `json:"item_count"`
	Total     float64           `json:"total"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID string            `json:"session_id"`
	Change    domain.ChangeKind `json:"change"`
	ProductID string            `json:"product_id,omitempty"`
	ItemCount int               `json:"item_count"`
}

// CheckoutSessionCreatedData is the payload for a checkout.session_created
// event. AmountTotal is in minor units and excludes shipping and tax, which
// the payment page adds.
type CheckoutSessionCreatedData struct {
	SessionID         string `json:"session_id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	Provider          string `json:"provider"`
	ItemCount         int    `json:"item_count"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
}

// PaymentData is the payload for payment.completed and payment.failed events.
type PaymentData struct {
	ProviderEventID string `json:"provider_event_id"`
	EventType       string `json:"event_type"`
	ObjectID        string `json:"object_id"`
}

// Publisher emits storefront domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	CartChanged(ctx context.Context, sessionID string, change domain.Change, cart domain.CartState) error
	WishlistChanged(ctx context.Context, sessionID string, change domain.Change, wishlist domain.WishlistState) error
	CheckoutSessionCreated(ctx context.Context, data CheckoutSessionCreatedData) error
	PaymentCompleted(ctx context.Context, data PaymentData) error
	PaymentFailed(ctx context.Context, data PaymentData) error
}

// sink is satisfied by *pkgkafka.Producer.
type sink interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  sink
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return newProducer(kafka, logger)
}

func newProducer(s sink, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{kafka: s, logger: logger}
}

// CartChanged publishes cart.cleared for a cleared cart and cart.updated for
// every other mutation.
func (p *Producer) CartChanged(ctx context.Context, sessionID string, change domain.Change, cart domain.CartState) error {
	topic := TopicCartUpdated
	if change.Kind == domain.ChangeCleared {
		topic = TopicCartCleared
	}
	data := CartUpdatedData{
		SessionID: sessionID,
		Change:    change.Kind,
		ItemID:    change.ItemID,
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		ItemCount: cart.ItemCount,
		Total:     cart.Total,
	}
	return p.publish(ctx, topic, sessionID, AggregateTypeCart, data)
}

// WishlistChanged publishes a wishlist.updated event.
func (p *Producer) WishlistChanged(ctx context.Context, sessionID string, change domain.Change, wishlist domain.WishlistState) error {
	data := WishlistUpdatedData{
		SessionID: sessionID,
		Change:    change.Kind,
		ProductID: change.ProductID,
		ItemCount: wishlist.ItemCount,
	}
	return p.publish(ctx, TopicWishlistUpdated, sessionID, AggregateTypeWishlist, data)
}

// CheckoutSessionCreated publishes a checkout.session_created event.
func (p *Producer) CheckoutSessionCreated(ctx context.Context, data CheckoutSessionCreatedData) error {
	return p.publish(ctx, TopicCheckoutSessionCreated, data.CheckoutSessionID, AggregateTypeCheckout, data)
}

// PaymentCompleted publishes a payment.completed event.
func (p *Producer) PaymentCompleted(ctx context.Context, data PaymentData) error {
	return p.publish(ctx, TopicPaymentCompleted, data.ObjectID, AggregateTypeCheckout, data)
}

// PaymentFailed publishes a payment.failed event.
func (p *Producer) PaymentFailed(ctx context.Context, data PaymentData) error {
	return p.publish(ctx, TopicPaymentFailed, data.ObjectID, AggregateTypeCheckout, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(ctx, topic, aggregateType, aggregateID, data)
	if err != nil {
		return err
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// Nop discards every event. Used when Kafka is disabled.
type Nop struct{}

var _ Publisher = Nop{}

func (Nop) CartChanged(context.Context, string, domain.Change, domain.CartState) error { return nil }
func (Nop) WishlistChanged(context.Context, string, domain.Change, domain.WishlistState) error {
	return nil
}
func (Nop) CheckoutSessionCreated(context.Context, CheckoutSessionCreatedData) error { return nil }
func (Nop) PaymentCompleted(context.Context, PaymentData) error                      { return nil }
func (Nop) PaymentFailed(context.Context, PaymentData) error                         { return nil }
