package handlers

import (
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/interfaces/rest"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) NotificationHealth(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// NotificationReady runs every registered readiness check and fails the
// probe when any dependency is down.
func (h *Handlers) NotificationReady(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.readiness {
		if err := check(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", "dependency", name, "error", err)
			rest.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":     "unavailable",
				"dependency": name,
			})
			return
		}
	}
	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
