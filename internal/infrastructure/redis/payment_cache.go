package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/google/uuid"
)

const paymentCacheTTL = 60 * time.Second

type cachedPayment struct {
	ID             uuid.UUID            `json:"id"`
	UserID         uuid.UUID            `json:"user_id"`
	Amount         int64                `json:"amount"`
	Currency       string               `json:"currency"`
	Status         domain.PaymentStatus `json:"status"`
	IdempotencyKey string               `json:"idempotency_key"`
	CreatedAt      time.Time            `json:"created_at"`
	ProcessedAt    *time.Time           `json:"processed_at"`
}

// PaymentCache is the read-through cache on payment:<id> for the query path.
type PaymentCache struct {
	c *Client
}

func NewPaymentCache(c *Client) *PaymentCache {
	return &PaymentCache{c: c}
}

func (p *PaymentCache) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, bool) {
	if !p.c.available() {
		return nil, false
	}

	raw, err := p.c.rdb.Get(ctx, "payment:"+id.String()).Bytes()
	if err != nil {
		return nil, false
	}

	var m cachedPayment
	if err := json.Unmarshal(raw, &m); err != nil {
		p.c.logger.WarnContext(ctx, "corrupt payment cache entry", "payment_id", id, "error", err)
		return nil, false
	}

	return domain.Reconstitute(
		m.ID, m.UserID, m.Amount, m.Currency, m.Status,
		m.IdempotencyKey, m.CreatedAt, m.ProcessedAt,
	), true
}

func (p *PaymentCache) Set(ctx context.Context, payment *domain.Payment) {
	if !p.c.available() {
		return
	}

	raw, err := json.Marshal(cachedPayment{
		ID:             payment.ID,
		UserID:         payment.UserID,
		Amount:         payment.AmountCents,
		Currency:       payment.Currency,
		Status:         payment.Status,
		IdempotencyKey: payment.IdempotencyKey,
		CreatedAt:      payment.CreatedAt,
		ProcessedAt:    payment.ProcessedAt,
	})
	if err != nil {
		return
	}

	if err := p.c.rdb.Set(ctx, "payment:"+payment.ID.String(), raw, paymentCacheTTL).Err(); err != nil {
		p.c.logger.WarnContext(ctx, "payment cache store failed", "payment_id", payment.ID, "error", err)
	}
}
