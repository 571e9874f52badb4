package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/interfaces/rest"
)

// CreatePayment accepts a payment intent and returns 202. Replays with a
// known Idempotency-Key return the original payment id, also as 202.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req rest.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("decode request body: %w", err)), h.logger)
		return
	}

	cmd := services.CreatePaymentCommand{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}

	payment, err := h.createService.CreatePayment(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusAccepted, rest.CreatePaymentResponse{
		Status:         "accepted",
		PaymentID:      payment.ID,
		IdempotencyKey: payment.IdempotencyKey,
	})
}
