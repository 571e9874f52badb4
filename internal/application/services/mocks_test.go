package services_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/events"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPaymentRepo struct {
	createFn    func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error
	settleFn    func(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error
	findByIDFn  func(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	findByKeyFn func(ctx context.Context, key string) (*domain.Payment, error)
}

func (m *mockPaymentRepo) CreatePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
	return m.createFn(ctx, payment, event)
}

func (m *mockPaymentRepo) SettlePaymentAtomic(ctx context.Context, payment *domain.Payment, event *domain.OutboxEvent) error {
	return m.settleFn(ctx, payment, event)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockPaymentRepo) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return m.findByKeyFn(ctx, key)
}

type mockIdempotencyCache struct {
	lookupFn func(ctx context.Context, key string) (uuid.UUID, bool)
	stored   map[string]uuid.UUID
}

func (m *mockIdempotencyCache) Lookup(ctx context.Context, key string) (uuid.UUID, bool) {
	if m.lookupFn == nil {
		return uuid.Nil, false
	}
	return m.lookupFn(ctx, key)
}

func (m *mockIdempotencyCache) Store(ctx context.Context, key string, paymentID uuid.UUID, ttl time.Duration) {
	if m.stored == nil {
		m.stored = make(map[string]uuid.UUID)
	}
	m.stored[key] = paymentID
}

type mockRateLimiter struct {
	allow bool
}

func (m *mockRateLimiter) Allow(ctx context.Context, principal string) bool {
	return m.allow
}

type mockLock struct {
	acquired bool
	released []string
}

func (m *mockLock) Acquire(ctx context.Context, name string) (string, bool) {
	if !m.acquired {
		return "", false
	}
	return "token-1", true
}

func (m *mockLock) Release(ctx context.Context, name string, token string) {
	m.released = append(m.released, name)
}

type mockGateway struct {
	chargeFn func(ctx context.Context, req application.ChargeRequest) error
	requests []application.ChargeRequest
}

func (m *mockGateway) Charge(ctx context.Context, req application.ChargeRequest) error {
	m.requests = append(m.requests, req)
	if m.chargeFn == nil {
		return nil
	}
	return m.chargeFn(ctx, req)
}

type mockProcessedStore struct {
	insertFn func(ctx context.Context, eventID uuid.UUID) (bool, error)
}

func (m *mockProcessedStore) Insert(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return m.insertFn(ctx, eventID)
}

type mockNotifier struct {
	emailFn func(ctx context.Context, userID, message string) error
	smsFn   func(ctx context.Context, userID, message string) error
	emails  []string
	sms     []string
}

func (m *mockNotifier) SendEmail(ctx context.Context, userID, message string) error {
	m.emails = append(m.emails, message)
	if m.emailFn == nil {
		return nil
	}
	return m.emailFn(ctx, userID, message)
}

func (m *mockNotifier) SendSMS(ctx context.Context, userID, message string) error {
	m.sms = append(m.sms, message)
	if m.smsFn == nil {
		return nil
	}
	return m.smsFn(ctx, userID, message)
}

type mockPaymentCache struct {
	getFn func(ctx context.Context, id uuid.UUID) (*domain.Payment, bool)
	set   []*domain.Payment
}

func (m *mockPaymentCache) Get(ctx context.Context, id uuid.UUID) (*domain.Payment, bool) {
	if m.getFn == nil {
		return nil, false
	}
	return m.getFn(ctx, id)
}

func (m *mockPaymentCache) Set(ctx context.Context, payment *domain.Payment) {
	m.set = append(m.set, payment)
}

func pendingPayment(userID uuid.UUID) *domain.Payment {
	money, _ := domain.NewMoney(2500, "USD")
	payment, _ := domain.NewPayment(userID, money, "idem-"+uuid.NewString())
	return payment
}

func terminalEnvelope(eventType string, userID uuid.UUID) *events.Envelope {
	return &events.Envelope{
		EventID:     uuid.New(),
		EventType:   eventType,
		AggregateID: uuid.New(),
		Version:     events.SchemaVersion,
		OccurredAt:  time.Now().UTC(),
		Payload: map[string]any{
			"payment_id": uuid.NewString(),
			"user_id":    userID.String(),
			"amount":     float64(2500),
			"currency":   "USD",
		},
	}
}
