package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
)

// AnalyticsWorker re-runs the daily rollup on an interval. The upsert is
// idempotent, so running it many times a day just refreshes the row.
type AnalyticsWorker struct {
	analytics *services.AnalyticsService
	interval  time.Duration
	logger    *slog.Logger
}

func NewAnalyticsWorker(analytics *services.AnalyticsService, interval time.Duration, logger *slog.Logger) *AnalyticsWorker {
	return &AnalyticsWorker{
		analytics: analytics,
		interval:  interval,
		logger:    logger,
	}
}

func (w *AnalyticsWorker) Start(ctx context.Context) {
	w.logger.Info("analytics worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("analytics worker stopping")
			return
		case <-ticker.C:
			if err := w.analytics.RunDaily(ctx); err != nil {
				w.logger.Error("analytics run failed", "error", err)
			}
		}
	}
}
