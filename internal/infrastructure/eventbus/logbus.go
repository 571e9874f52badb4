package eventbus

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
)

// LogPublisher is the local stand-in used when USE_AWS_EVENTS is false:
// every publish lands in the log instead of a real bus.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, env *events.Envelope) error {
	p.logger.InfoContext(ctx, "event published",
		"event_id", env.EventID,
		"event_type", env.EventType,
		"aggregate_id", env.AggregateID,
		"version", env.Version,
		"occurred_at", env.OccurredAt)
	return nil
}

func (p *LogPublisher) Forward(ctx context.Context, source, detailType string, detail []byte) error {
	p.logger.InfoContext(ctx, "event forwarded",
		"source", source,
		"detail_type", detailType,
		"detail_bytes", len(detail))
	return nil
}
