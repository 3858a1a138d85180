package handlers

import (
	"net/http"
	"strings"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/internal/server/response"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// HistoryRequest is the JSON body of POST /history.
type HistoryRequest struct {
	Source            sources.ID `json:"source"`
	Artifact          string     `json:"artifact"`
	ProcessedArtifact string     `json:"processed_artifact"`
	RecordCount       int        `json:"record_count"`
	Status            string     `json:"status"`
}

// HandleListHistory handles GET /api/v1/history.
// @Summary List ingestion history, newest first
// @Tags history
// @Produce json
// @Param source query string false "Only this source"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Response{data=[]ingest.HistoryEntry}
// @Router /api/v1/history [get].
func (h *Handlers) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		response.BadRequest(w, "Invalid limit", "limit must be a non-negative integer")
		return
	}
	source := sources.ID(r.URL.Query().Get("source"))

	key := cache.Key(cache.PrefixHistory, string(source), r.URL.Query().Get("limit"))
	if cached, found := h.cache.Get(key); found {
		w.Header().Set("X-Cache", "HIT")
		response.OK(w, cached)
		return
	}

	entries, err := h.store.History(r.Context(), ingest.HistoryFilter{Source: source, Limit: limit})
	if err != nil {
		h.logger.Error().Err(err).Msg("History query failed")
		response.ErrorFromType(w, err)
		return
	}
	if entries == nil {
		entries = []ingest.HistoryEntry{}
	}

	h.cache.Set(key, entries)
	w.Header().Set("X-Cache", "MISS")
	response.OK(w, entries)
}

// HandleCreateHistory handles POST /api/v1/history.
// @Summary Record an ingestion
// @Tags history
// @Accept json
// @Produce json
// @Success 201 {object} response.Response{data=ingest.HistoryEntry}
// @Failure 409 {object} response.Response{error=response.Error}
// @Router /api/v1/history [post].
func (h *Handlers) HandleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var req HistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(string(req.Source)) == "" || strings.TrimSpace(req.Artifact) == "" {
		response.BadRequest(w, "Missing fields", "source and artifact are required")
		return
	}
	if req.Status == "" {
		req.Status = "success"
	}

	entry := ingest.HistoryEntry{
		ID:                uuid.NewString(),
		Source:            req.Source,
		Artifact:          req.Artifact,
		ProcessedArtifact: req.ProcessedArtifact,
		RecordCount:       req.RecordCount,
		Status:            req.Status,
		Timestamp:         utc.Now(),
	}
	if err := h.store.RecordHistoryEntry(r.Context(), entry); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Invalidate(cache.PrefixHistory)
	response.Created(w, entry)
}

// HandleDeleteHistory handles DELETE /api/v1/history/{id}.
// @Summary Delete a history entry
// @Tags history
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/history/{id} [delete].
func (h *Handlers) HandleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteHistory(r.Context(), id); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Invalidate(cache.PrefixHistory)
	response.OK(w, map[string]any{"deleted": id})
}
