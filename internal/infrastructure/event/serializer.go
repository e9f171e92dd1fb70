package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopcart/backend/internal/domain/shared"
)

// Envelope is the wire form of a domain event
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a domain event, encoding the event itself as the payload
func NewEnvelope(event shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	version := 1
	if versioned, ok := event.(shared.VersionedEvent); ok {
		version = versioned.SchemaVersion()
	}

	return &Envelope{
		ID:            event.EventID(),
		Type:          event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt().UTC(),
		SchemaVersion: version,
		Payload:       payload,
	}, nil
}

// Marshal encodes the envelope as JSON
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
