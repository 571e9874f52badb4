// Package events defines the wire contracts shared by the API (producer),
// the workers (consumers) and the DLQ replayer. Changing these is a
// breaking change.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recognized event types. The version travels as a separate envelope field,
// never embedded in the type string.
const (
	TypePaymentCreated = "payment.created"
	TypePaymentSuccess = "payment.success"
	TypePaymentFailed  = "payment.failed"
)

// SchemaVersion is the current envelope payload version.
const SchemaVersion = 1

// Envelope is the global event envelope used across the platform.
type Envelope struct {
	EventID     uuid.UUID      `json:"event_id"`
	EventType   string         `json:"event_type"`
	AggregateID uuid.UUID      `json:"aggregate_id"`
	Version     int            `json:"version"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload"`
}

// Validate checks the envelope against the schema every consumer relies on.
func (e *Envelope) Validate() error {
	if e.EventID == uuid.Nil {
		return fmt.Errorf("envelope missing event_id")
	}
	if e.EventType == "" {
		return fmt.Errorf("envelope missing event_type")
	}
	if e.AggregateID == uuid.Nil {
		return fmt.Errorf("envelope missing aggregate_id")
	}
	if e.Version <= 0 {
		return fmt.Errorf("envelope has invalid version %d", e.Version)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("envelope missing occurred_at")
	}
	if e.Payload == nil {
		return fmt.Errorf("envelope missing payload")
	}
	if _, ok := e.Payload["payment_id"]; !ok {
		return fmt.Errorf("envelope payload missing payment_id")
	}
	return nil
}

// PaymentID extracts and parses the payment id carried in the payload.
func (e *Envelope) PaymentID() (uuid.UUID, error) {
	raw, ok := e.Payload["payment_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("payload payment_id is not a string")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payload payment_id %q: %w", raw, err)
	}
	return id, nil
}

// PaymentPayload is the canonical payload of all payment events.
type PaymentPayload struct {
	PaymentID string `json:"payment_id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Map renders the payload as the open map carried inside an Envelope.
func (p PaymentPayload) Map() map[string]any {
	return map[string]any{
		"payment_id": p.PaymentID,
		"user_id":    p.UserID,
		"amount":     p.Amount,
		"currency":   p.Currency,
	}
}

// BusMessage is the EventBridge delivery shape as it arrives in an SQS body.
type BusMessage struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}

// ParseBusMessage decodes a raw SQS record body into a bus message.
func ParseBusMessage(body []byte) (*BusMessage, error) {
	var msg BusMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode bus message: %w", err)
	}
	return &msg, nil
}

// Envelope decodes and validates the event envelope carried in Detail.
func (m *BusMessage) Envelope() (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(m.Detail, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}
