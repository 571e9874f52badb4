package services

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/google/uuid"
)

// QueryService serves the payment read path through a short-lived
// read-through cache.
type QueryService struct {
	paymentRepo application.PaymentRepository
	cache       application.PaymentCache
	logger      *slog.Logger
}

func NewQueryService(paymentRepo application.PaymentRepository, cache application.PaymentCache, logger *slog.Logger) *QueryService {
	return &QueryService{
		paymentRepo: paymentRepo,
		cache:       cache,
		logger:      logger,
	}
}

func (s *QueryService) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	if payment, ok := s.cache.Get(ctx, id); ok {
		return payment, nil
	}

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, application.NewPaymentNotFoundError(err)
		}
		return nil, application.NewInternalError(err)
	}

	s.cache.Set(ctx, payment)
	return payment, nil
}
