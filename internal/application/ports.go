package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
)

// PaymentRepository is the port for payment persistence. The *Atomic methods
// write the payment row and its outbox event in one transaction.
type PaymentRepository interface {
	CreatePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error
	SettlePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)
}

// OutboxDrainer hands a batch of unpublished events to publish, oldest
// occurred_at first, under row locks that make concurrent drains disjoint.
// Rows whose publish callback returns nil are stamped published; the rest
// stay unpublished for the next run. The batch commits as one transaction.
type OutboxDrainer interface {
	Drain(ctx context.Context, batchSize int, publish func(ctx context.Context, event *domain.OutboxEvent) error) (int, error)
}

// ProcessedEventStore is the consumer-side dedup table. Insert returns
// false when the event id was already recorded.
type ProcessedEventStore interface {
	Insert(ctx context.Context, eventID uuid.UUID) (bool, error)
}

// IdempotencyCache is the fast-path lookup of a prior payment by client
// key. Both methods are best-effort: backend trouble reads as a miss.
type IdempotencyCache interface {
	Lookup(ctx context.Context, key string) (uuid.UUID, bool)
	Store(ctx context.Context, key string, paymentID uuid.UUID, ttl time.Duration)
}

// PaymentCache is the read-through cache on the payment query path.
type PaymentCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Payment, bool)
	Set(ctx context.Context, payment *domain.Payment)
}

// DistributedLock serializes workers on one aggregate. Acquire returns a
// fencing token, or ok=false on contention or backend unavailability.
type DistributedLock interface {
	Acquire(ctx context.Context, name string) (string, bool)
	Release(ctx context.Context, name string, token string)
}

// RateLimiter allows or denies a request for a principal. Fails open.
type RateLimiter interface {
	Allow(ctx context.Context, principal string) bool
}

// ChargeRequest carries everything the gateway needs; the idempotency key
// is derived from the payment id so a redelivered charge cannot double-bill.
type ChargeRequest struct {
	PaymentID      uuid.UUID
	AmountCents    int64
	Currency       string
	IdempotencyKey string
}

// PaymentGateway is the port for the external charging backend.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) error
}

// EventBus publishes envelopes to the downstream bus.
type EventBus interface {
	Publish(ctx context.Context, env *events.Envelope) error
}

// BusForwarder republishes a raw bus entry, used by DLQ replay where the
// original envelope must pass through byte-for-byte.
type BusForwarder interface {
	Forward(ctx context.Context, source, detailType string, detail []byte) error
}

// Notifier delivers user-facing messages.
type Notifier interface {
	SendEmail(ctx context.Context, userID, message string) error
	SendSMS(ctx context.Context, userID, message string) error
}

// AnalyticsRepository aggregates per-day payment counters.
type AnalyticsRepository interface {
	UpsertDailyAnalytics(ctx context.Context, day time.Time) error
}
