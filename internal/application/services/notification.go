package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"golang.org/x/sync/errgroup"
)

// NotificationService reacts to terminal payment events. It is idempotent
// at the event level: the processed_events insert wins exactly once per
// event_id, duplicates are acknowledged without side-effects. A delivery
// failure propagates so the bus retries the record.
type NotificationService struct {
	processed application.ProcessedEventStore
	notifier  application.Notifier
	logger    *slog.Logger
}

func NewNotificationService(
	processed application.ProcessedEventStore,
	notifier application.Notifier,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		processed: processed,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *NotificationService) HandleTerminalEvent(ctx context.Context, env *events.Envelope) error {
	inserted, err := s.processed.Insert(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("record processed event %s: %w", env.EventID, err)
	}
	if !inserted {
		s.logger.InfoContext(ctx, "duplicate notification event",
			"event_id", env.EventID,
			"aggregate_id", env.AggregateID)
		return nil
	}

	userID, _ := env.Payload["user_id"].(string)
	currency, _ := env.Payload["currency"].(string)
	amount := numericPayloadField(env.Payload, "amount")

	var message string
	switch env.EventType {
	case events.TypePaymentSuccess:
		message = fmt.Sprintf("Your payment of %d %s was successful.", amount, currency)
	case events.TypePaymentFailed:
		message = fmt.Sprintf("Your payment of %d %s failed.", amount, currency)
	default:
		s.logger.WarnContext(ctx, "unknown notification event",
			"event_type", env.EventType,
			"event_id", env.EventID)
		return nil
	}

	// Email and SMS go out in parallel; either failing fails the record.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.notifier.SendEmail(gctx, userID, message) })
	g.Go(func() error { return s.notifier.SendSMS(gctx, userID, message) })

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "notification delivery failed",
			"event_id", env.EventID,
			"aggregate_id", env.AggregateID,
			"error", err)
		return application.NewNotificationDeliveryError(err)
	}

	s.logger.InfoContext(ctx, "notification sent",
		"event_id", env.EventID,
		"aggregate_id", env.AggregateID,
		"event_type", env.EventType,
		"user_id", userID)

	return nil
}

// JSON numbers decode as float64 when the payload travels through the
// open map; producers in-process hand over int64.
func numericPayloadField(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}
