package handlers

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
)

// ReadinessCheck reports whether a backing dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Handlers struct {
	createService *services.CreatePaymentService
	queryService  *services.QueryService
	readiness     map[string]ReadinessCheck
	logger        *slog.Logger
}

func NewHandlers(
	createService *services.CreatePaymentService,
	queryService *services.QueryService,
	readiness map[string]ReadinessCheck,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		createService: createService,
		queryService:  queryService,
		readiness:     readiness,
		logger:        logger,
	}
}
