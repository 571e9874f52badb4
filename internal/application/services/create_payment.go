package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
)

const idempotencyTTL = 300 * time.Second

type CreatePaymentCommand struct {
	UserID         uuid.UUID
	Amount         int64
	Currency       string
	IdempotencyKey string
}

// CreatePaymentService accepts payment intents: it enforces rate limiting
// and idempotency, then durably records the payment together with its
// payment.created outbox event. No gateway call happens on this path.
type CreatePaymentService struct {
	paymentRepo application.PaymentRepository
	cache       application.IdempotencyCache
	limiter     application.RateLimiter
	logger      *slog.Logger
}

func NewCreatePaymentService(
	paymentRepo application.PaymentRepository,
	cache application.IdempotencyCache,
	limiter application.RateLimiter,
	logger *slog.Logger,
) *CreatePaymentService {
	return &CreatePaymentService{
		paymentRepo: paymentRepo,
		cache:       cache,
		limiter:     limiter,
		logger:      logger,
	}
}

func (s *CreatePaymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*domain.Payment, error) {
	if cmd.IdempotencyKey == "" {
		return nil, application.NewMissingIdempotencyKeyError()
	}

	if !s.limiter.Allow(ctx, cmd.UserID.String()) {
		return nil, application.NewRateLimitedError()
	}

	// Fast path: cache hit resolves to the authoritative row by id.
	if paymentID, ok := s.cache.Lookup(ctx, cmd.IdempotencyKey); ok {
		payment, err := s.paymentRepo.FindByID(ctx, paymentID)
		if err == nil {
			s.logger.InfoContext(ctx, "idempotent replay from cache",
				"payment_id", payment.ID,
				"idempotency_key", cmd.IdempotencyKey)
			return payment, nil
		}
		if !domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, application.NewInternalError(err)
		}
		// Stale cache entry: fall through to the DB lookup.
	}

	existing, err := s.paymentRepo.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
	if err != nil {
		return nil, application.NewInternalError(fmt.Errorf("idempotency key lookup: %w", err))
	}
	if existing != nil {
		s.cache.Store(ctx, cmd.IdempotencyKey, existing.ID, idempotencyTTL)
		return existing, nil
	}

	money, err := domain.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	payment, err := domain.NewPayment(cmd.UserID, money, cmd.IdempotencyKey)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	created := domain.NewOutboxEvent(
		payment.ID,
		events.TypePaymentCreated,
		events.SchemaVersion,
		events.PaymentPayload{
			PaymentID: payment.ID.String(),
			UserID:    payment.UserID.String(),
			Amount:    payment.AmountCents,
			Currency:  payment.Currency,
		}.Map(),
		payment.CreatedAt,
	)

	if err := s.paymentRepo.CreatePaymentAtomic(ctx, payment, created); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateIdempotencyKey) {
			// Lost a race on the unique key: the other writer's row is
			// the payment for this key.
			return s.reread(ctx, cmd.IdempotencyKey)
		}
		return nil, application.NewInternalError(fmt.Errorf("create payment: %w", err))
	}

	s.cache.Store(ctx, cmd.IdempotencyKey, payment.ID, idempotencyTTL)

	s.logger.InfoContext(ctx, "payment accepted",
		"payment_id", payment.ID,
		"user_id", payment.UserID,
		"amount", payment.AmountCents,
		"currency", payment.Currency)

	return payment, nil
}

func (s *CreatePaymentService) reread(ctx context.Context, idempotencyKey string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, application.NewInternalError(err)
	}
	if payment == nil {
		return nil, application.NewInternalError(errors.New("duplicate idempotency key but no payment row"))
	}
	s.cache.Store(ctx, idempotencyKey, payment.ID, idempotencyTTL)
	return payment, nil
}
