package handlers

import (
	"net/http"

	"github.com/agentstation/tablesync/internal/server/response"
	"github.com/agentstation/tablesync/pkg/ingest"
)

// HandleHealth handles GET /api/v1/health.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/health [get].
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "tablesync",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready.
// @Summary Readiness check
// @Description Reports whether the record store answers queries
// @Tags health
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ready [get].
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.History(r.Context(), ingest.HistoryFilter{Limit: 1}); err != nil {
		h.logger.Warn().Err(err).Msg("Store not ready")
		response.ServiceUnavailable(w, "Store not available")
		return
	}

	response.OK(w, map[string]any{
		"status": "ready",
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"ingest_enabled": h.ingester != nil,
	})
}
