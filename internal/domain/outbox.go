package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a durable domain event row written in the same transaction
// as the state change it describes. EventID is stable across republish and
// serves as the consumer-side dedup key.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Version     int
	Payload     map[string]any
	OccurredAt  time.Time
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func NewOutboxEvent(aggregateID uuid.UUID, eventType string, version int, payload map[string]any, occurredAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:     uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Version:     version,
		Payload:     payload,
		OccurredAt:  occurredAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

// ProcessedEvent marks a bus event as handled by a consumer. Presence of a
// row means the side-effect has been (or is being) executed.
type ProcessedEvent struct {
	EventID     uuid.UUID
	ProcessedAt time.Time
}
