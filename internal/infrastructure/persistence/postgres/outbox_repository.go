package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/jackc/pgx/v5"
)

type OutboxRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewOutboxRepository(db *DB, logger *slog.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

// Drain selects up to batchSize unpublished events oldest-first under
// FOR UPDATE SKIP LOCKED, so concurrent publishers work disjoint batches.
// Events whose publish callback succeeds get published_at stamped; failed
// ones stay unpublished and are retried on a later run. The whole batch
// commits as one transaction.
func (r *OutboxRepository) Drain(ctx context.Context, batchSize int, publish func(ctx context.Context, event *domain.OutboxEvent) error) (int, error) {
	var published int

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			SELECT id, event_id, aggregate_id, event_type, version, payload, occurred_at, created_at, published_at
			FROM outbox_events
			WHERE published_at IS NULL
			ORDER BY occurred_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`

		rows, err := tx.Query(ctx, query, batchSize)
		if err != nil {
			return fmt.Errorf("query unpublished events: %w", err)
		}

		models, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OutboxEventModel, error) {
			var m OutboxEventModel
			err := row.Scan(
				&m.ID, &m.EventID, &m.AggregateID, &m.EventType, &m.Version,
				&m.Payload, &m.OccurredAt, &m.CreatedAt, &m.PublishedAt,
			)
			return m, err
		})
		if err != nil {
			return fmt.Errorf("scan unpublished events: %w", err)
		}

		for _, m := range models {
			event, err := toOutboxDomain(m)
			if err != nil {
				// An undecodable row can never publish. Left unpublished it
				// would sit at the head of every batch, so stamp it out of
				// the scan and keep the error in the log for inspection.
				r.logger.ErrorContext(ctx, "quarantining undecodable outbox row",
					"outbox_id", m.ID,
					"event_id", m.EventID,
					"error", err)

				stamp := `UPDATE outbox_events SET published_at = $1 WHERE id = $2`
				if _, err := tx.Exec(ctx, stamp, time.Now().UTC(), m.ID); err != nil {
					return fmt.Errorf("quarantine outbox row %d: %w", m.ID, err)
				}
				continue
			}

			if err := publish(ctx, event); err != nil {
				r.logger.ErrorContext(ctx, "outbox event publish failed",
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err)
				continue
			}

			stamp := `UPDATE outbox_events SET published_at = $1 WHERE id = $2`
			if _, err := tx.Exec(ctx, stamp, time.Now().UTC(), m.ID); err != nil {
				return fmt.Errorf("stamp published_at for event %s: %w", event.EventID, err)
			}

			published++
			r.logger.InfoContext(ctx, "outbox event published",
				"event_id", event.EventID,
				"event_type", event.EventType,
				"aggregate_id", event.AggregateID)
		}

		return nil
	})

	if err != nil {
		return 0, err
	}
	return published, nil
}
