package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m PaymentModel) *domain.Payment {
	return domain.Reconstitute(
		m.ID,
		m.UserID,
		m.Amount,
		m.Currency,
		domain.PaymentStatus(m.Status),
		m.IdempotencyKey,
		m.CreatedAt,
		m.ProcessedAt,
	)
}

// toDBModel: maps domain entity to db model
func toDBModel(p *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:             p.ID,
		UserID:         p.UserID,
		Amount:         p.AmountCents,
		Currency:       p.Currency,
		Status:         string(p.Status),
		IdempotencyKey: p.IdempotencyKey,
		CreatedAt:      p.CreatedAt,
		ProcessedAt:    p.ProcessedAt,
	}
}

func toOutboxDomain(m OutboxEventModel) (*domain.OutboxEvent, error) {
	var payload map[string]any
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode outbox payload for event %s: %w", m.EventID, err)
	}
	return &domain.OutboxEvent{
		ID:          m.ID,
		EventID:     m.EventID,
		AggregateID: m.AggregateID,
		EventType:   m.EventType,
		Version:     m.Version,
		Payload:     payload,
		OccurredAt:  m.OccurredAt,
		CreatedAt:   m.CreatedAt,
		PublishedAt: m.PublishedAt,
	}, nil
}
