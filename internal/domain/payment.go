// Package domain encodes the payment aggregate and its lifecycle.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the current state of a payment in its lifecycle.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	AmountCents    int64
	Currency       string
	Status         PaymentStatus
	IdempotencyKey string

	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewPayment(userID uuid.UUID, amount Money, idempotencyKey string) (*Payment, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID is required")
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, errors.New("idempotency key is required")
	}

	return &Payment{
		ID:             uuid.New(),
		UserID:         userID,
		AmountCents:    amount.Amount,
		Currency:       amount.Currency,
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// MarkSuccess transitions the payment to SUCCESS and stamps processed_at.
func (p *Payment) MarkSuccess(at time.Time) error {
	return p.settle(StatusSuccess, at)
}

// MarkFailed transitions the payment to FAILED and stamps processed_at.
func (p *Payment) MarkFailed(at time.Time) error {
	return p.settle(StatusFailed, at)
}

// Once a payment leaves PENDING both status and processed_at are immutable.
func (p *Payment) settle(target PaymentStatus, at time.Time) error {
	if p.Status != StatusPending {
		return NewInvalidTransitionError(p.Status, target)
	}
	at = at.UTC()
	p.Status = target
	p.ProcessedAt = &at
	return nil
}

// IsTerminal reports whether the payment has reached a state with no further
// transitions.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// Reconstitute - special constructor for loading from DB.
func Reconstitute(
	id, userID uuid.UUID,
	amount int64, currency string,
	status PaymentStatus,
	idempotencyKey string,
	createdAt time.Time,
	processedAt *time.Time,
) *Payment {
	return &Payment{
		ID:             id,
		UserID:         userID,
		AmountCents:    amount,
		Currency:       currency,
		Status:         status,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      createdAt,
		ProcessedAt:    processedAt,
	}
}
