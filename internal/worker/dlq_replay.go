package worker

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/eventbus"
)

const dlqReceiveBatch = 10

type ReplayQueue interface {
	Receive(ctx context.Context, max int) ([]eventbus.QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// DLQReplayer drains one batch of dead-lettered records back onto the bus.
// Only terminal payment events are replayable; anything else on the DLQ is
// poison and gets dropped. A failed forward leaves the message in place
// for the next run.
type DLQReplayer struct {
	queue     ReplayQueue
	forwarder application.BusForwarder
	logger    *slog.Logger
}

func NewDLQReplayer(queue ReplayQueue, forwarder application.BusForwarder, logger *slog.Logger) *DLQReplayer {
	return &DLQReplayer{
		queue:     queue,
		forwarder: forwarder,
		logger:    logger,
	}
}

func replayable(detailType string) bool {
	return detailType == events.TypePaymentSuccess || detailType == events.TypePaymentFailed
}

// Run processes one receive batch and reports how many records were
// forwarded back to the bus.
func (r *DLQReplayer) Run(ctx context.Context) (int, error) {
	msgs, err := r.queue.Receive(ctx, dlqReceiveBatch)
	if err != nil {
		return 0, err
	}

	var replayed int
	for _, m := range msgs {
		msg, err := events.ParseBusMessage([]byte(m.Body))
		if err != nil {
			r.logger.Warn("dropping undecodable dlq record", "message_id", m.MessageID, "error", err)
			if err := r.queue.Delete(ctx, m.ReceiptHandle); err != nil {
				r.logger.Error("dlq delete failed", "message_id", m.MessageID, "error", err)
			}
			continue
		}

		if !replayable(msg.DetailType) {
			r.logger.Warn("dropping non-replayable dlq record",
				"message_id", m.MessageID,
				"detail_type", msg.DetailType)
			if err := r.queue.Delete(ctx, m.ReceiptHandle); err != nil {
				r.logger.Error("dlq delete failed", "message_id", m.MessageID, "error", err)
			}
			continue
		}

		if err := r.forwarder.Forward(ctx, msg.Source, msg.DetailType, msg.Detail); err != nil {
			// Leave the message; the next run retries it.
			r.logger.Error("dlq replay forward failed",
				"message_id", m.MessageID,
				"detail_type", msg.DetailType,
				"error", err)
			continue
		}

		if err := r.queue.Delete(ctx, m.ReceiptHandle); err != nil {
			r.logger.Error("dlq delete failed", "message_id", m.MessageID, "error", err)
			continue
		}

		replayed++
		dlqReplayedTotal.Inc()
		r.logger.Info("dlq record replayed",
			"message_id", m.MessageID,
			"detail_type", msg.DetailType)
	}

	if replayed > 0 {
		r.logger.Info("dlq replay batch complete", "replayed", replayed, "received", len(msgs))
	}
	return replayed, nil
}
