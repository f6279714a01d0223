package handler

import (
	"log/slog"
	"net/http"

	"workmarket/internal/httputil"
	"workmarket/internal/store"
)

// HealthHandler reports process and store health.
type HealthHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewHealthHandler(st store.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: st, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Healthcheck(r.Context()); err != nil {
		h.logger.Error("store healthcheck failed", "error", err)
		httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
