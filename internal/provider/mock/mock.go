package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/provider"
)

// SignatureHeaderValue is the only signature Verifier accepts.
const SignatureHeaderValue = "mock-signature"

// Provider is a mock payment provider that always succeeds.
// It is intended for development and testing purposes.
type Provider struct{}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateCheckoutSession returns a session that redirects straight to the
// success URL.
func (p *Provider) CreateCheckoutSession(ctx context.Context, input *provider.SessionInput) (*provider.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: no line items", provider.ErrRejected)
	}

	id := "cs_mock_" + uuid.NewString()
	return &provider.Session{
		ID:  id,
		URL: strings.ReplaceAll(input.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
	}, nil
}

// Verifier accepts webhook payloads signed with SignatureHeaderValue. The
// payload is a JSON object with "id", "type" and "data.object".
type Verifier struct{}

// VerifyWebhook implements provider.WebhookVerifier.
func (Verifier) VerifyWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	if signature != SignatureHeaderValue {
		return nil, provider.ErrInvalidSignature
	}

	var evt struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrInvalidSignature, err)
	}

	var obj struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(evt.Data.Object, &obj)

	return &provider.WebhookEvent{
		ID:       evt.ID,
		Type:     evt.Type,
		ObjectID: obj.ID,
		Object:   evt.Data.Object,
	}, nil
}
