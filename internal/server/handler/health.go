package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Check pings one backing dependency.
type Check func(ctx context.Context) error

// HealthHandler serves the health endpoint with the run mode and the state of
// every configured backend.
type HealthHandler struct {
	mode      string
	backend   string
	startedAt time.Time
	checks    map[string]Check
	logger    *slog.Logger
}

// NewHealthHandler creates a HealthHandler. checks may be nil.
func NewHealthHandler(mode, backend string, startedAt time.Time, checks map[string]Check, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		mode:      mode,
		backend:   backend,
		startedAt: startedAt,
		checks:    checks,
		logger:    logger,
	}
}

// HealthCheck reports "ok", or "degraded" with 503 when any check fails.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "handler: health check failed",
				slog.String("dependency", name),
				slog.String("error", err.Error()),
			)
			deps[name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"mode":           h.mode,
		"state_backend":  h.backend,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"dependencies":   deps,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
