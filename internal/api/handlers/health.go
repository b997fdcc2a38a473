package handlers

import (
	"net/http"

	"github.com/wonny/coverline/internal/underwriting"
	"github.com/wonny/coverline/pkg/logger"
)

// HealthHandler reports service and store health
type HealthHandler struct {
	svc    *underwriting.Service
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc *underwriting.Service, log *logger.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, logger: log}
}

// Check pings the store
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unavailable",
			"service": "coverline-api",
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"service":             "coverline-api",
		"term_months":         h.svc.TermMonths(),
		"renewal_window_days": h.svc.RenewalWindowDays(),
	})
}
