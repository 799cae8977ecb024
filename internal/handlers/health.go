package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	Database HealthChecker
}

// Healthcheck implements GET /healthcheck for liveness checks.
func (HealthHandler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	respond(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}

// Ready implements GET /healthz. It also pings the database when one is configured.
func (h HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "skipped"}

	if h.Database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Database.Ping(ctx); err != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			respondJSON(r.Context(), w, http.StatusServiceUnavailable, envelope{
				StatusCode: http.StatusServiceUnavailable, Data: status, Message: "database unreachable",
			})
			return
		}
		status["database"] = "ok"
	}

	respond(r.Context(), w, http.StatusOK, status, "ready")
}
