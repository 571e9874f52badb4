package postgres

import (
	"time"

	"github.com/google/uuid"
)

type PaymentModel struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Amount         int64
	Currency       string
	Status         string
	IdempotencyKey string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}

type OutboxEventModel struct {
	ID          int64
	EventID     uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Version     int
	Payload     []byte
	OccurredAt  time.Time
	CreatedAt   time.Time
	PublishedAt *time.Time
}
