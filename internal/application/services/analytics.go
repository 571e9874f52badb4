package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
)

// AnalyticsService rolls the day's payment counters into
// daily_payment_analytics. Correctness of the pipeline never depends on it.
type AnalyticsService struct {
	analyticsRepo application.AnalyticsRepository
	logger        *slog.Logger
}

func NewAnalyticsService(analyticsRepo application.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo, logger: logger}
}

func (s *AnalyticsService) RunDaily(ctx context.Context) error {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if err := s.analyticsRepo.UpsertDailyAnalytics(ctx, day); err != nil {
		s.logger.ErrorContext(ctx, "daily analytics aggregation failed",
			"day", day.Format(time.DateOnly),
			"error", err)
		return err
	}
	s.logger.InfoContext(ctx, "daily analytics aggregated", "day", day.Format(time.DateOnly))
	return nil
}
