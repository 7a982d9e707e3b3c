package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/provider"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/format"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

// DefaultTaxRate applies when the service is built with a zero rate.
const DefaultTaxRate = 0.08

// CreateSessionInput holds the parameters for a checkout handoff. An empty
// Items list checks out the session's cart.
type CreateSessionInput struct {
	Items         []domain.LineItem `json:"items" validate:"max=100,dive"`
	SuccessURL    string            `json:"success_url,omitempty" validate:"omitempty,url"`
	CancelURL     string            `json:"cancel_url,omitempty" validate:"omitempty,url"`
	CustomerEmail string            `json:"customer_email,omitempty" validate:"omitempty,email"`
}

// SummaryView is the order summary with display strings.
type SummaryView struct {
	domain.OrderSummary
	ShippingID      string `json:"shipping_id"`
	SubtotalDisplay string `json:"subtotal_display"`
	ShippingDisplay string `json:"shipping_display"`
	TaxDisplay      string `json:"tax_display"`
	TotalDisplay    string `json:"total_display"`
}

// CheckoutConfig configures a CheckoutService.
type CheckoutConfig struct {
	BaseURL  string
	Currency string
	TaxRate  float64
	Breaker  httpclient.CircuitBreakerConfig
}

// CheckoutService prices carts and hands them to the payment provider.
type CheckoutService struct {
	sessions  Sessions
	provider  provider.Provider
	verifier  provider.WebhookVerifier
	publisher event.Publisher
	breaker   *httpclient.Breaker[*provider.Session]
	cfg       CheckoutConfig
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service. A nil verifier makes
// every webhook fail as not configured.
func NewCheckoutService(
	sessions Sessions,
	p provider.Provider,
	verifier provider.WebhookVerifier,
	publisher event.Publisher,
	cfg CheckoutConfig,
	logger *slog.Logger,
) *CheckoutService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TaxRate == 0 {
		cfg.TaxRate = DefaultTaxRate
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = httpclient.DefaultCircuitBreakerConfig("payment-" + p.Name())
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// Declined requests are the caller's fault, not the provider's.
	isFailure := func(err error) bool { return !errors.Is(err, provider.ErrRejected) }

	return &CheckoutService{
		sessions:  sessions,
		provider:  p,
		verifier:  verifier,
		publisher: publisher,
		breaker:   httpclient.NewBreaker[*provider.Session](cfg.Breaker, isFailure, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// LineItemsFromCart flattens cart lines into the records handed to the
// payment provider.
func LineItemsFromCart(cart domain.CartState) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, domain.LineItem{
			Name:        item.Product.Name,
			Description: item.Product.Description,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
			Image:       item.Product.PrimaryImage(),
		})
	}
	return items
}

// ComputeSummary prices a cart. An unknown shipping id ships free.
func ComputeSummary(cart domain.CartState, shippingID string, taxRate float64) domain.OrderSummary {
	subtotal := decimal.Zero
	count := 0
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.Subtotal())
		count += item.Quantity
	}

	shipping := decimal.Zero
	if opt, ok := domain.ShippingByID(shippingID); ok {
		shipping = decimal.NewFromFloat(opt.Price)
	}

	tax := subtotal.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	return domain.OrderSummary{
		Subtotal:  subtotal.Round(2).InexactFloat64(),
		Shipping:  shipping.InexactFloat64(),
		Tax:       tax.InexactFloat64(),
		Total:     total.InexactFloat64(),
		ItemCount: count,
	}
}

// ToMinorUnits converts a price to cents, rounding half away from zero.
func ToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Summary prices the session's cart with the chosen shipping speed.
func (s *CheckoutService) Summary(ctx context.Context, sessionID, shippingID string) SummaryView {
	if shippingID == "" {
		shippingID = domain.DefaultShippingID
	}
	sum := ComputeSummary(s.sessions.Get(ctx, sessionID).Cart.State(), shippingID, s.cfg.TaxRate)
	return SummaryView{
		OrderSummary:    sum,
		ShippingID:      shippingID,
		SubtotalDisplay: format.Currency(sum.Subtotal, s.cfg.Currency),
		ShippingDisplay: format.Currency(sum.Shipping, s.cfg.Currency),
		TaxDisplay:      format.Currency(sum.Tax, s.cfg.Currency),
		TotalDisplay:    format.Currency(sum.Total, s.cfg.Currency),
	}
}

// CreateSession opens a hosted checkout session for the given items, or
// for the session's cart when none are given. The cart is left as is.
func (s *CheckoutService) CreateSession(ctx context.Context, sessionID string, input CreateSessionInput) (domain.CheckoutSession, error) {
	ctx, span := tracing.Start(ctx, "checkout.create_session")
	defer span.End()

	items := input.Items
	if len(items) == 0 {
		items = LineItemsFromCart(s.sessions.Get(ctx, sessionID).Cart.State())
	}
	if len(items) == 0 {
		return domain.CheckoutSession{}, apperrors.InvalidInput("No items provided")
	}
	input.Items = items
	if err := validator.Validate(input); err != nil {
		return domain.CheckoutSession{}, err
	}

	req := &provider.SessionInput{
		Items:         make([]provider.LineItem, 0, len(items)),
		Currency:      strings.ToLower(s.cfg.Currency),
		SuccessURL:    input.SuccessURL,
		CancelURL:     input.CancelURL,
		CustomerEmail: input.CustomerEmail,
		Metadata:      map[string]string{"session_id": sessionID},
	}
	if req.SuccessURL == "" {
		req.SuccessURL = s.cfg.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if req.CancelURL == "" {
		req.CancelURL = s.cfg.BaseURL + "/checkout/cancelled"
	}

	var amount int64
	count := 0
	for _, item := range items {
		cents := ToMinorUnits(item.Price)
		amount += cents * int64(item.Quantity)
		count += item.Quantity
		req.Items = append(req.Items, provider.LineItem{
			Name:        item.Name,
			Description: item.Description,
			UnitAmount:  cents,
			Quantity:    int64(item.Quantity),
			Image:       item.Image,
		})
	}

	created, err := s.breaker.Execute(ctx, func() (*provider.Session, error) {
		return s.provider.CreateCheckoutSession(ctx, req)
	})
	if err != nil {
		tracing.Fail(span, err)
		return domain.CheckoutSession{}, s.providerError(ctx, sessionID, err)
	}
	checkoutSessions.WithLabelValues(s.provider.Name(), "created").Inc()

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", sessionID),
		slog.String("checkout_session_id", created.ID),
		slog.String("provider", s.provider.Name()),
		slog.Int("item_count", count),
	)

	if err := s.publisher.CheckoutSessionCreated(ctx, event.CheckoutSessionCreatedData{
		SessionID:         sessionID,
		CheckoutSessionID: created.ID,
		Provider:          s.provider.Name(),
		ItemCount:         count,
		AmountTotal:       amount,
		Currency:          req.Currency,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout session created event",
			slog.String("checkout_session_id", created.ID),
			slog.String("error", err.Error()),
		)
	}

	return domain.CheckoutSession{SessionID: created.ID, URL: created.URL}, nil
}

func (s *CheckoutService) providerError(ctx context.Context, sessionID string, err error) error {
	name := s.provider.Name()
	switch {
	case httpclient.IsOpen(err):
		checkoutSessions.WithLabelValues(name, "circuit_open").Inc()
		return apperrors.ServiceUnavailable("payment provider temporarily unavailable")
	case errors.Is(err, provider.ErrRejected):
		checkoutSessions.WithLabelValues(name, "rejected").Inc()
		s.logger.WarnContext(ctx, "checkout session rejected",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		checkoutSessions.WithLabelValues(name, "canceled").Inc()
		return err
	default:
		checkoutSessions.WithLabelValues(name, "failed").Inc()
		s.logger.ErrorContext(ctx, "checkout session creation failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return apperrors.Upstream("failed to create checkout session", err)
	}
}

// HandleWebhook verifies and dispatches a payment provider event.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.verifier == nil {
		s.logger.ErrorContext(ctx, "webhook secret is not configured")
		return apperrors.NotConfigured("Webhook secret not configured")
	}
	if signature == "" {
		return apperrors.InvalidInput("Missing stripe-signature header")
	}

	evt, err := s.verifier.VerifyWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidSignature) {
			s.logger.WarnContext(ctx, "webhook signature verification failed", slog.String("error", err.Error()))
			return apperrors.InvalidInput("Invalid signature")
		}
		return apperrors.InvalidInput(err.Error())
	}
	webhookEvents.WithLabelValues(evt.Type).Inc()

	log := s.logger.With(
		slog.String("event_id", evt.ID),
		slog.String("event_type", evt.Type),
		slog.String("object_id", evt.ObjectID),
	)
	data := event.PaymentData{ProviderEventID: evt.ID, EventType: evt.Type, ObjectID: evt.ObjectID}

	var publishErr error
	switch evt.Type {
	case provider.EventCheckoutSessionCompleted:
		log.InfoContext(ctx, "checkout session completed")
		publishErr = s.publisher.PaymentCompleted(ctx, data)
	case provider.EventPaymentIntentSucceeded:
		log.InfoContext(ctx, "payment succeeded")
		publishErr = s.publisher.PaymentCompleted(ctx, data)
	case provider.EventPaymentIntentFailed:
		log.WarnContext(ctx, "payment failed")
		publishErr = s.publisher.PaymentFailed(ctx, data)
	default:
		log.InfoContext(ctx, "unhandled webhook event type")
	}
	if publishErr != nil {
		log.ErrorContext(ctx, "failed to publish payment event", slog.String("error", publishErr.Error()))
	}
	return nil
}
