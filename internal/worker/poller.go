package worker

import (
	"context"
	"log/slog"
	"time"
)

const pollBatch = 10

// Poller is the non-Lambda consumer: it long-polls the work queue and
// feeds each record through the dispatcher. Records whose dispatch
// errors stay on the queue until their visibility timeout expires, so
// redelivery semantics match the managed trigger.
type Poller struct {
	queue      ReplayQueue
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewPoller(queue ReplayQueue, dispatcher *Dispatcher, logger *slog.Logger) *Poller {
	return &Poller{
		queue:      queue,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("queue poller started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("queue poller stopping")
			return
		default:
		}

		msgs, err := p.queue.Receive(ctx, pollBatch)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("queue receive failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, m := range msgs {
			if err := p.dispatcher.Dispatch(ctx, []byte(m.Body)); err != nil {
				p.logger.Error("record dispatch failed",
					"message_id", m.MessageID,
					"error", err)
				continue
			}
			if err := p.queue.Delete(ctx, m.ReceiptHandle); err != nil {
				p.logger.Error("queue delete failed", "message_id", m.MessageID, "error", err)
			}
		}
	}
}
