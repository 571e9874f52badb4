package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/interfaces/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface: payment intake and query, health and
// readiness probes, and the metrics endpoint.
func NewRouter(h *Handlers, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Timeout(requestTimeout))

	r.Post("/payments", h.CreatePayment)
	r.Get("/payments/{id}", h.GetPayment)

	r.Get("/health", h.Health)
	r.Get("/notifications/health", h.NotificationHealth)
	r.Get("/notifications/ready", h.NotificationReady)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
