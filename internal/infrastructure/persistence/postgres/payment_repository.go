package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePaymentAtomic inserts the payment row and its payment.created
// outbox event in one transaction: both appear or neither does.
func (r *PaymentRepository) CreatePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO payments (id, user_id, amount, currency, status, idempotency_key, created_at, processed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		m := toDBModel(payment)
		_, err := tx.Exec(ctx, query,
			m.ID,
			m.UserID,
			m.Amount,
			m.Currency,
			m.Status,
			m.IdempotencyKey,
			m.CreatedAt,
			m.ProcessedAt,
		)
		if err != nil {
			return err
		}

		return insertOutboxEvent(ctx, tx, event)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateKeyError(payment.IdempotencyKey)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// SettlePaymentAtomic persists a terminal transition together with its
// terminal outbox event. The status guard in the UPDATE keeps settled rows
// immutable even if a stale worker slips past the aggregate lock.
func (r *PaymentRepository) SettlePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE payments
			SET status = $1, processed_at = $2
			WHERE id = $3 AND status = 'PENDING'
		`

		tag, err := tx.Exec(ctx, query, string(payment.Status), payment.ProcessedAt, payment.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NewInvalidTransitionError(domain.StatusPending, payment.Status)
		}

		return insertOutboxEvent(ctx, tx, event)
	})

	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return fmt.Errorf("settle payment: %w", err)
	}
	return nil
}

// FindByID retrieves a payment. Returns a PAYMENT_NOT_FOUND domain error
// when the row does not exist.
func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, status, idempotency_key, created_at, processed_at
		FROM payments WHERE id = $1
	`

	return findPayment(ctx, r.db.Pool, query, id, id.String())
}

// FindByIdempotencyKey looks up a payment by client key. Returns (nil, nil)
// when no payment carries the key.
func (r *PaymentRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, amount, currency, status, idempotency_key, created_at, processed_at
		FROM payments WHERE idempotency_key = $1
	`

	payment, err := findPayment(ctx, r.db.Pool, query, key, key)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// findPayment runs a single-row payment query against either the pool or an
// open transaction.
func findPayment(ctx context.Context, q Executor, query string, arg any, ref string) (*domain.Payment, error) {
	return scanPayment(q.QueryRow(ctx, query, arg), ref)
}

func scanPayment(row pgx.Row, ref string) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.Amount, &m.Currency, &m.Status,
		&m.IdempotencyKey, &m.CreatedAt, &m.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(ref)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainModel(m), nil
}

func insertOutboxEvent(ctx context.Context, q Executor, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO outbox_events (event_id, aggregate_id, event_type, version, payload, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = q.Exec(ctx, query,
		event.EventID,
		event.AggregateID,
		event.EventType,
		event.Version,
		payload,
		event.OccurredAt,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event %s: %w", event.EventType, err)
	}
	return nil
}
