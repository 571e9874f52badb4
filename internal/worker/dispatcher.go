package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
)

type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, paymentID uuid.UUID) error
}

type TerminalEventHandler interface {
	HandleTerminalEvent(ctx context.Context, env *events.Envelope) error
}

// Dispatcher routes one received bus record body to the right consumer.
// A returned error means the record must be redelivered; nil means it is
// safe to acknowledge. Records the platform cannot ever handle, such as
// an unsupported schema version, are acknowledged after a log line so
// they do not cycle to the DLQ forever.
type Dispatcher struct {
	processor PaymentProcessor
	notifier  TerminalEventHandler
	logger    *slog.Logger
}

func NewDispatcher(processor PaymentProcessor, notifier TerminalEventHandler, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		processor: processor,
		notifier:  notifier,
		logger:    logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) error {
	msg, err := events.ParseBusMessage(body)
	if err != nil {
		dispatchedTotal.WithLabelValues("malformed").Inc()
		return err
	}

	env, err := msg.Envelope()
	if err != nil {
		dispatchedTotal.WithLabelValues("invalid_envelope").Inc()
		return fmt.Errorf("record %s: %w", msg.ID, err)
	}

	if env.Version != events.SchemaVersion {
		d.logger.Warn("unsupported event version, acknowledging",
			"event_id", env.EventID,
			"event_type", env.EventType,
			"version", env.Version)
		dispatchedTotal.WithLabelValues("unsupported_version").Inc()
		return nil
	}

	switch env.EventType {
	case events.TypePaymentCreated:
		paymentID, err := env.PaymentID()
		if err != nil {
			dispatchedTotal.WithLabelValues("invalid_envelope").Inc()
			return fmt.Errorf("event %s: %w", env.EventID, err)
		}
		if err := d.processor.ProcessPayment(ctx, paymentID); err != nil {
			dispatchedTotal.WithLabelValues("failed").Inc()
			return err
		}

	case events.TypePaymentSuccess, events.TypePaymentFailed:
		if err := d.notifier.HandleTerminalEvent(ctx, env); err != nil {
			dispatchedTotal.WithLabelValues("failed").Inc()
			return err
		}

	default:
		d.logger.Warn("unrecognized event type, acknowledging",
			"event_id", env.EventID,
			"event_type", env.EventType)
		dispatchedTotal.WithLabelValues("unknown_type").Inc()
		return nil
	}

	dispatchedTotal.WithLabelValues("ok").Inc()
	return nil
}
