// Package stripe implements the payment provider on top of Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/utafrali/storefront/internal/provider"
)

// AllowedShippingCountries are the countries checkout collects addresses for.
var AllowedShippingCountries = []string{"US", "CA", "GB", "AU", "DE", "FR", "IT", "ES", "NL", "BE"}

// Config holds Stripe client settings.
type Config struct {
	SecretKey string
	// APIURL overrides https://api.stripe.com, e.g. for stripe-mock.
	APIURL            string
	HTTPClient        *http.Client
	MaxNetworkRetries int64
}

// Provider creates Stripe Checkout sessions.
type Provider struct {
	sessions *session.Client
}

var _ provider.Provider = (*Provider)(nil)

// NewProvider creates a Stripe provider. The backend is private to the
// provider so tests can point it at a fake API.
func NewProvider(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	backendCfg := &stripego.BackendConfig{
		HTTPClient:        cfg.HTTPClient,
		MaxNetworkRetries: stripego.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     leveledLogger{logger: logger.With(slog.String("component", "stripe"))},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripego.String(strings.TrimRight(cfg.APIURL, "/"))
	}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg)

	return &Provider{sessions: &session.Client{B: backend, Key: cfg.SecretKey}}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

// CreateCheckoutSession creates a card-only hosted payment page that
// collects a billing address and a shipping address.
func (p *Provider) CreateCheckoutSession(ctx context.Context, input *provider.SessionInput) (*provider.Session, error) {
	params := sessionParams(input)
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		var serr *stripego.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode >= 400 && serr.HTTPStatusCode < 500 &&
			serr.HTTPStatusCode != http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", provider.ErrRejected, serr.Msg)
		}
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &provider.Session{ID: s.ID, URL: s.URL}, nil
}

func sessionParams(input *provider.SessionInput) *stripego.CheckoutSessionParams {
	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = "usd"
	}

	lineItems := make([]*stripego.CheckoutSessionLineItemParams, 0, len(input.Items))
	for _, item := range input.Items {
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripego.String(item.Description)
		}
		if item.Image != "" {
			product.Images = stripego.StringSlice([]string{item.Image})
		}
		lineItems = append(lineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(currency),
				ProductData: product,
				UnitAmount:  stripego.Int64(item.UnitAmount),
			},
			Quantity: stripego.Int64(item.Quantity),
		})
	}

	params := &stripego.CheckoutSessionParams{
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:         stripego.String(input.SuccessURL),
		CancelURL:          stripego.String(input.CancelURL),
		ShippingAddressCollection: &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(AllowedShippingCountries),
		},
		BillingAddressCollection: stripego.String(string(stripego.CheckoutSessionBillingAddressCollectionRequired)),
	}
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripego.String(input.CustomerEmail)
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// Verifier checks the Stripe-Signature header of webhook deliveries.
type Verifier struct {
	secret string
}

var _ provider.WebhookVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier for the endpoint signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// VerifyWebhook implements provider.WebhookVerifier. Events from any API
// version are accepted; only the object id is read.
func (v *Verifier) VerifyWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrInvalidSignature, err)
	}

	out := &provider.WebhookEvent{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data != nil {
		out.Object = evt.Data.Raw
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(evt.Data.Raw, &obj); err == nil {
			out.ObjectID = obj.ID
		}
	}
	return out, nil
}

// leveledLogger routes stripe-go's client logging into slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l leveledLogger) Debugf(format string, v ...any) { l.logger.Debug(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Infof(format string, v ...any)  { l.logger.Debug(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Warnf(format string, v ...any)  { l.logger.Warn(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Errorf(format string, v ...any) { l.logger.Error(fmt.Sprintf(format, v...)) }
