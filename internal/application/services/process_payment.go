package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
)

// ProcessPaymentService drives a single payment.created delivery through
// the gateway and into a terminal state. Deliveries are at-least-once, so
// every step is guarded: the aggregate lock against concurrent workers,
// the PENDING check against redelivery of an already-settled payment.
type ProcessPaymentService struct {
	paymentRepo application.PaymentRepository
	lock        application.DistributedLock
	gateway     application.PaymentGateway
	logger      *slog.Logger
}

func NewProcessPaymentService(
	paymentRepo application.PaymentRepository,
	lock application.DistributedLock,
	gateway application.PaymentGateway,
	logger *slog.Logger,
) *ProcessPaymentService {
	return &ProcessPaymentService{
		paymentRepo: paymentRepo,
		lock:        lock,
		gateway:     gateway,
		logger:      logger,
	}
}

func (s *ProcessPaymentService) ProcessPayment(ctx context.Context, paymentID uuid.UUID) error {
	lockName := "payment:" + paymentID.String()

	token, ok := s.lock.Acquire(ctx, lockName)
	if !ok {
		// Another worker owns this aggregate; the bus will redeliver.
		s.logger.InfoContext(ctx, "payment lock held elsewhere", "payment_id", paymentID)
		return nil
	}
	defer s.lock.Release(ctx, lockName, token)

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			s.logger.WarnContext(ctx, "payment missing for delivery", "payment_id", paymentID)
			return nil
		}
		return fmt.Errorf("load payment %s: %w", paymentID, err)
	}

	if payment.Status != domain.StatusPending {
		s.logger.InfoContext(ctx, "payment already settled",
			"payment_id", paymentID,
			"status", payment.Status)
		return nil
	}

	chargeErr := s.gateway.Charge(ctx, application.ChargeRequest{
		PaymentID:      payment.ID,
		AmountCents:    payment.AmountCents,
		Currency:       payment.Currency,
		IdempotencyKey: "charge:" + payment.ID.String(),
	})

	// Gateway failure is captured as committed FAILED state, never
	// re-raised: redelivering the charge would not change the outcome.
	now := time.Now().UTC()
	var eventType string
	if chargeErr != nil {
		s.logger.WarnContext(ctx, "gateway charge failed",
			"payment_id", payment.ID,
			"error", chargeErr)
		if err := payment.MarkFailed(now); err != nil {
			return err
		}
		eventType = events.TypePaymentFailed
	} else {
		if err := payment.MarkSuccess(now); err != nil {
			return err
		}
		eventType = events.TypePaymentSuccess
	}

	terminal := domain.NewOutboxEvent(
		payment.ID,
		eventType,
		events.SchemaVersion,
		terminalPayload(payment),
		*payment.ProcessedAt,
	)

	if err := s.paymentRepo.SettlePaymentAtomic(ctx, payment, terminal); err != nil {
		// Nothing committed; the bus redelivers and the next attempt
		// observes PENDING again.
		return fmt.Errorf("settle payment %s: %w", payment.ID, err)
	}

	s.logger.InfoContext(ctx, "payment settled",
		"payment_id", payment.ID,
		"status", payment.Status,
		"event_id", terminal.EventID)

	return nil
}

func terminalPayload(p *domain.Payment) map[string]any {
	payload := events.PaymentPayload{
		PaymentID: p.ID.String(),
		UserID:    p.UserID.String(),
		Amount:    p.AmountCents,
		Currency:  p.Currency,
	}.Map()
	payload["occurred_at"] = p.ProcessedAt.Format(time.RFC3339Nano)
	return payload
}
