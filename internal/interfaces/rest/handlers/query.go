package handlers

import (
	"fmt"
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/interfaces/rest"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(fmt.Errorf("parse payment id: %w", err)), h.logger)
		return
	}

	payment, err := h.queryService.GetPayment(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}
