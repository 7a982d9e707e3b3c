package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/pkg/logger"
)

// Source names the storefront as producer in every envelope.
const Source = TopicPrefix

// SchemaVersion is bumped when a payload changes incompatibly.
const SchemaVersion = 1

// Event is the envelope written to every storefront topic. AggregateID is
// also the message key, so the events of one cart stay ordered on a single
// partition.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Source        string          `json:"source"`
	SchemaVersion int             `json:"schema_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent wraps payload in an envelope stamped with a fresh ID, the current
// UTC time and the correlation ID carried by ctx.
func NewEvent(ctx context.Context, eventType, aggregateType, aggregateID string, payload any) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Source:        Source,
		SchemaVersion: SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: logger.CorrelationIDFromContext(ctx),
		Payload:       raw,
	}, nil
}

// DecodeEvent parses an envelope read back from a topic.
func DecodeEvent(raw []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &e, nil
}

// Decode unmarshals the payload into target.
func (e *Event) Decode(target any) error {
	return json.Unmarshal(e.Payload, target)
}
