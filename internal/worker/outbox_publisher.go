// Package worker holds the background loops: the outbox publisher, the
// bus record dispatcher, the DLQ replayer and the analytics rollup.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
)

// OutboxPublisher drains unpublished outbox rows to the event bus on a
// fixed interval. Concurrent publishers are safe: the drain locks
// disjoint batches, and consumers tolerate the resulting at-least-once
// delivery.
type OutboxPublisher struct {
	drainer   application.OutboxDrainer
	bus       application.EventBus
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewOutboxPublisher(
	drainer application.OutboxDrainer,
	bus application.EventBus,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxPublisher {
	return &OutboxPublisher{
		drainer:   drainer,
		bus:       bus,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (p *OutboxPublisher) Start(ctx context.Context) {
	p.logger.Info("outbox publisher started", "interval", p.interval, "batch_size", p.batchSize)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox publisher stopping")
			return
		case <-ticker.C:
			if _, err := p.RunOnce(ctx); err != nil {
				outboxDrainErrors.Inc()
				p.logger.Error("outbox drain failed", "error", err)
			}
		}
	}
}

// RunOnce drains a single batch and returns the number of events published.
func (p *OutboxPublisher) RunOnce(ctx context.Context) (int, error) {
	published, err := p.drainer.Drain(ctx, p.batchSize, func(ctx context.Context, event *domain.OutboxEvent) error {
		env := &events.Envelope{
			EventID:     event.EventID,
			EventType:   event.EventType,
			AggregateID: event.AggregateID,
			Version:     event.Version,
			OccurredAt:  event.OccurredAt,
			Payload:     event.Payload,
		}
		return p.bus.Publish(ctx, env)
	})
	if err != nil {
		return published, err
	}

	if published > 0 {
		outboxPublishedTotal.Add(float64(published))
		p.logger.Info("outbox batch published", "count", published)
	}
	return published, nil
}
