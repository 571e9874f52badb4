package gateway

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
)

// SimulatedGateway declines a configurable fraction of charges and
// remembers idempotency keys so a repeated charge replays its first
// outcome instead of rolling the dice again.
type SimulatedGateway struct {
	failureRate float64
	logger      *slog.Logger

	mu       sync.Mutex
	outcomes map[string]error
	rng      *rand.Rand
}

func NewSimulatedGateway(failureRate float64, logger *slog.Logger) *SimulatedGateway {
	return &SimulatedGateway{
		failureRate: failureRate,
		logger:      logger,
		outcomes:    make(map[string]error),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req application.ChargeRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if outcome, seen := g.outcomes[req.IdempotencyKey]; seen {
		g.logger.InfoContext(ctx, "replaying prior charge outcome",
			"payment_id", req.PaymentID,
			"idempotency_key", req.IdempotencyKey)
		return outcome
	}

	var outcome error
	if g.rng.Float64() < g.failureRate {
		outcome = &GatewayError{
			Code:       "CHARGE_DECLINED",
			Message:    "card declined",
			StatusCode: 402,
		}
	}
	g.outcomes[req.IdempotencyKey] = outcome

	g.logger.InfoContext(ctx, "simulated charge",
		"payment_id", req.PaymentID,
		"amount", req.AmountCents,
		"currency", req.Currency,
		"declined", outcome != nil)

	return outcome
}
