package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPayment_SkipsWhenLockHeldElsewhere(t *testing.T) {
	gw := &mockGateway{}
	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			t.Fatal("payment must not be loaded without the lock")
			return nil, nil
		},
	}

	svc := services.NewProcessPaymentService(repo, &mockLock{acquired: false}, gw, testLogger())

	err := svc.ProcessPayment(context.Background(), uuid.New())
	require.NoError(t, err, "contention acknowledges the delivery")
	assert.Empty(t, gw.requests)
}

func TestProcessPayment_AcknowledgesMissingPayment(t *testing.T) {
	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return nil, domain.NewPaymentNotFoundError(id.String())
		},
	}

	svc := services.NewProcessPaymentService(repo, &mockLock{acquired: true}, &mockGateway{}, testLogger())

	err := svc.ProcessPayment(context.Background(), uuid.New())
	require.NoError(t, err)
}

func TestProcessPayment_SkipsSettledPayment(t *testing.T) {
	payment := pendingPayment(uuid.New())
	require.NoError(t, payment.MarkSuccess(time.Now()))

	gw := &mockGateway{}
	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return payment, nil
		},
		settleFn: func(ctx context.Context, p *domain.Payment, e *domain.OutboxEvent) error {
			t.Fatal("a settled payment must not be settled again")
			return nil
		},
	}

	svc := services.NewProcessPaymentService(repo, &mockLock{acquired: true}, gw, testLogger())

	err := svc.ProcessPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Empty(t, gw.requests, "redelivery must not re-charge")
}

func TestProcessPayment_ChargeSucceeds(t *testing.T) {
	payment := pendingPayment(uuid.New())

	var settled *domain.Payment
	var event *domain.OutboxEvent
	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return payment, nil
		},
		settleFn: func(ctx context.Context, p *domain.Payment, e *domain.OutboxEvent) error {
			settled = p
			event = e
			return nil
		},
	}

	gw := &mockGateway{}
	lock := &mockLock{acquired: true}
	svc := services.NewProcessPaymentService(repo, lock, gw, testLogger())

	err := svc.ProcessPayment(context.Background(), payment.ID)
	require.NoError(t, err)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, "charge:"+payment.ID.String(), gw.requests[0].IdempotencyKey)
	assert.Equal(t, payment.AmountCents, gw.requests[0].AmountCents)

	require.NotNil(t, settled)
	assert.Equal(t, domain.StatusSuccess, settled.Status)
	require.NotNil(t, settled.ProcessedAt)

	require.NotNil(t, event)
	assert.Equal(t, events.TypePaymentSuccess, event.EventType)
	assert.Equal(t, payment.ID, event.AggregateID)
	assert.Equal(t, *settled.ProcessedAt, event.OccurredAt)

	assert.Equal(t, []string{"payment:" + payment.ID.String()}, lock.released)
}

func TestProcessPayment_ChargeFailureCommitsFailedState(t *testing.T) {
	payment := pendingPayment(uuid.New())

	var settled *domain.Payment
	var event *domain.OutboxEvent
	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return payment, nil
		},
		settleFn: func(ctx context.Context, p *domain.Payment, e *domain.OutboxEvent) error {
			settled = p
			event = e
			return nil
		},
	}

	gw := &mockGateway{
		chargeFn: func(ctx context.Context, req application.ChargeRequest) error {
			return errors.New("card declined")
		},
	}

	svc := services.NewProcessPaymentService(repo, &mockLock{acquired: true}, gw, testLogger())

	err := svc.ProcessPayment(context.Background(), payment.ID)
	require.NoError(t, err, "a declined charge is a committed outcome, not a retry")

	require.NotNil(t, settled)
	assert.Equal(t, domain.StatusFailed, settled.Status)
	require.NotNil(t, event)
	assert.Equal(t, events.TypePaymentFailed, event.EventType)
}

func TestProcessPayment_SettleFailurePropagatesForRedelivery(t *testing.T) {
	payment := pendingPayment(uuid.New())

	repo := &mockPaymentRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return payment, nil
		},
		settleFn: func(ctx context.Context, p *domain.Payment, e *domain.OutboxEvent) error {
			return errors.New("connection reset")
		},
	}

	svc := services.NewProcessPaymentService(repo, &mockLock{acquired: true}, &mockGateway{}, testLogger())

	err := svc.ProcessPayment(context.Background(), payment.ID)
	require.Error(t, err)
}
