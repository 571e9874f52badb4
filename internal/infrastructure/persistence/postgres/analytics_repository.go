package postgres

import (
	"context"
	"fmt"
	"time"
)

type AnalyticsRepository struct {
	db *DB
}

func NewAnalyticsRepository(db *DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// UpsertDailyAnalytics recomputes one day's counters from the payments
// table. Re-running for the same day overwrites the previous rollup.
func (r *AnalyticsRepository) UpsertDailyAnalytics(ctx context.Context, day time.Time) error {
	query := `
		INSERT INTO daily_payment_analytics
			(date, total_payments, successful_payments, failed_payments, failure_rate, avg_processing_time_seconds)
		SELECT
			$1::date,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'SUCCESS'),
			COUNT(*) FILTER (WHERE status = 'FAILED'),
			COALESCE(COUNT(*) FILTER (WHERE status = 'FAILED')::float / NULLIF(COUNT(*), 0), 0),
			AVG(EXTRACT(EPOCH FROM (processed_at - created_at)))
		FROM payments
		WHERE created_at::date = $1::date
		ON CONFLICT (date) DO UPDATE SET
			total_payments              = EXCLUDED.total_payments,
			successful_payments         = EXCLUDED.successful_payments,
			failed_payments             = EXCLUDED.failed_payments,
			failure_rate                = EXCLUDED.failure_rate,
			avg_processing_time_seconds = EXCLUDED.avg_processing_time_seconds
	`

	if _, err := r.db.Pool.Exec(ctx, query, day); err != nil {
		return fmt.Errorf("upsert daily analytics: %w", err)
	}
	return nil
}
