package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noExistingPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		createFn: func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
			return nil
		},
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
			return nil, domain.NewPaymentNotFoundError(id.String())
		},
		findByKeyFn: func(ctx context.Context, key string) (*domain.Payment, error) {
			return nil, nil
		},
	}
}

func TestCreatePayment_RejectsMissingIdempotencyKey(t *testing.T) {
	svc := services.NewCreatePaymentService(noExistingPaymentRepo(), &mockIdempotencyCache{}, &mockRateLimiter{allow: true}, testLogger())

	_, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:   uuid.New(),
		Amount:   1000,
		Currency: "USD",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeMissingIdempotencyKey, svcErr.Code)
	assert.Equal(t, 400, svcErr.HTTPStatus)
}

func TestCreatePayment_RejectsWhenRateLimited(t *testing.T) {
	svc := services.NewCreatePaymentService(noExistingPaymentRepo(), &mockIdempotencyCache{}, &mockRateLimiter{allow: false}, testLogger())

	_, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         uuid.New(),
		Amount:         1000,
		Currency:       "USD",
		IdempotencyKey: "idem-1",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeRateLimited, svcErr.Code)
	assert.Equal(t, 429, svcErr.HTTPStatus)
}

func TestCreatePayment_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		cmd  services.CreatePaymentCommand
	}{
		{
			name: "negative amount",
			cmd: services.CreatePaymentCommand{
				UserID: uuid.New(), Amount: -5, Currency: "USD", IdempotencyKey: "idem-neg",
			},
		},
		{
			name: "zero amount",
			cmd: services.CreatePaymentCommand{
				UserID: uuid.New(), Amount: 0, Currency: "USD", IdempotencyKey: "idem-zero",
			},
		},
		{
			name: "bad currency",
			cmd: services.CreatePaymentCommand{
				UserID: uuid.New(), Amount: 100, Currency: "DOLLARS", IdempotencyKey: "idem-cur",
			},
		},
		{
			name: "missing user",
			cmd: services.CreatePaymentCommand{
				Amount: 100, Currency: "USD", IdempotencyKey: "idem-usr",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewCreatePaymentService(noExistingPaymentRepo(), &mockIdempotencyCache{}, &mockRateLimiter{allow: true}, testLogger())

			_, err := svc.CreatePayment(context.Background(), tt.cmd)

			svcErr, ok := application.IsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, application.ErrCodeInvalidInput, svcErr.Code)
		})
	}
}

func TestCreatePayment_PersistsPaymentWithOutboxEvent(t *testing.T) {
	var gotPayment *domain.Payment
	var gotEvent *domain.OutboxEvent

	repo := noExistingPaymentRepo()
	repo.createFn = func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
		gotPayment = payment
		gotEvent = event
		return nil
	}

	cache := &mockIdempotencyCache{}
	svc := services.NewCreatePaymentService(repo, cache, &mockRateLimiter{allow: true}, testLogger())

	userID := uuid.New()
	payment, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         userID,
		Amount:         2500,
		Currency:       "usd",
		IdempotencyKey: "idem-create",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, payment.Status)
	assert.Equal(t, int64(2500), payment.AmountCents)
	assert.Equal(t, "USD", payment.Currency)
	assert.Same(t, gotPayment, payment)

	require.NotNil(t, gotEvent)
	assert.Equal(t, events.TypePaymentCreated, gotEvent.EventType)
	assert.Equal(t, events.SchemaVersion, gotEvent.Version)
	assert.Equal(t, payment.ID, gotEvent.AggregateID)
	assert.Equal(t, payment.ID.String(), gotEvent.Payload["payment_id"])
	assert.Equal(t, userID.String(), gotEvent.Payload["user_id"])
	assert.Equal(t, payment.CreatedAt, gotEvent.OccurredAt)

	assert.Equal(t, payment.ID, cache.stored["idem-create"])
}

func TestCreatePayment_ReplaysExistingPaymentFromDB(t *testing.T) {
	existing := pendingPayment(uuid.New())
	existing.IdempotencyKey = "idem-replay"

	created := 0
	repo := noExistingPaymentRepo()
	repo.createFn = func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
		created++
		return nil
	}
	repo.findByKeyFn = func(ctx context.Context, key string) (*domain.Payment, error) {
		if key == "idem-replay" {
			return existing, nil
		}
		return nil, nil
	}

	cache := &mockIdempotencyCache{}
	svc := services.NewCreatePaymentService(repo, cache, &mockRateLimiter{allow: true}, testLogger())

	payment, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         existing.UserID,
		Amount:         existing.AmountCents,
		Currency:       existing.Currency,
		IdempotencyKey: "idem-replay",
	})
	require.NoError(t, err)

	assert.Same(t, existing, payment)
	assert.Zero(t, created, "no new payment row for a replayed key")
	assert.Equal(t, existing.ID, cache.stored["idem-replay"])
}

func TestCreatePayment_ReplaysFromCacheWithoutKeyLookup(t *testing.T) {
	existing := pendingPayment(uuid.New())

	repo := noExistingPaymentRepo()
	repo.findByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
		require.Equal(t, existing.ID, id)
		return existing, nil
	}
	repo.findByKeyFn = func(ctx context.Context, key string) (*domain.Payment, error) {
		t.Fatal("key lookup should not run on a cache hit")
		return nil, nil
	}

	cache := &mockIdempotencyCache{
		lookupFn: func(ctx context.Context, key string) (uuid.UUID, bool) {
			return existing.ID, true
		},
	}

	svc := services.NewCreatePaymentService(repo, cache, &mockRateLimiter{allow: true}, testLogger())

	payment, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         existing.UserID,
		Amount:         existing.AmountCents,
		Currency:       existing.Currency,
		IdempotencyKey: existing.IdempotencyKey,
	})
	require.NoError(t, err)
	assert.Same(t, existing, payment)
}

func TestCreatePayment_LostRaceRereadsWinner(t *testing.T) {
	winner := pendingPayment(uuid.New())
	winner.IdempotencyKey = "idem-race"

	firstLookup := true
	repo := noExistingPaymentRepo()
	repo.createFn = func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
		return domain.NewDuplicateKeyError("idem-race")
	}
	repo.findByKeyFn = func(ctx context.Context, key string) (*domain.Payment, error) {
		if firstLookup {
			firstLookup = false
			return nil, nil
		}
		return winner, nil
	}

	svc := services.NewCreatePaymentService(repo, &mockIdempotencyCache{}, &mockRateLimiter{allow: true}, testLogger())

	payment, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         winner.UserID,
		Amount:         winner.AmountCents,
		Currency:       winner.Currency,
		IdempotencyKey: "idem-race",
	})
	require.NoError(t, err)
	assert.Same(t, winner, payment)
}

func TestCreatePayment_RepoFailureIsInternal(t *testing.T) {
	repo := noExistingPaymentRepo()
	repo.createFn = func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
		return errors.New("connection reset")
	}

	svc := services.NewCreatePaymentService(repo, &mockIdempotencyCache{}, &mockRateLimiter{allow: true}, testLogger())

	_, err := svc.CreatePayment(context.Background(), services.CreatePaymentCommand{
		UserID:         uuid.New(),
		Amount:         100,
		Currency:       "USD",
		IdempotencyKey: "idem-boom",
	})

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeInternal, svcErr.Code)
}
