package rest

import (
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Amount   int64     `json:"amount"`
	Currency string    `json:"currency"`
}

// CreatePaymentResponse acknowledges acceptance; the charge itself runs
// asynchronously and the caller polls GET /payments/{id} for the outcome.
type CreatePaymentResponse struct {
	Status         string    `json:"status"`
	PaymentID      uuid.UUID `json:"payment_id"`
	IdempotencyKey string    `json:"idempotency_key"`
}

type PaymentResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.AmountCents,
		Currency:    p.Currency,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		ProcessedAt: p.ProcessedAt,
	}
}
