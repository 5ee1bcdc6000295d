package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/isdelr/expense-tracker-be/internal/api/respond"
	"github.com/isdelr/expense-tracker-be/internal/health"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc         health.ReadinessUseCase
	environment string
	now         func() time.Time
}

func NewHealthHandler(svc health.ReadinessUseCase, environment string) *HealthHandler {
	return &HealthHandler{svc: svc, environment: environment, now: time.Now}
}

type healthResponse struct {
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// Health is a liveness check that touches no dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Message:     "Expense Tracker API is running!",
		Timestamp:   h.now().UTC().Format(timestampLayout),
		Environment: h.environment,
	})
}

// Ready checks every dependency and answers 503 if any of them fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := h.svc.Ready(ctx)
	status := http.StatusOK
	if !report.Ready() {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(w, status, report)
}
