package handlers

import (
	"net/http"

	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/internal/server/response"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// HandleListRecords handles GET /api/v1/records.
// @Summary List canonical records per source
// @Tags records
// @Produce json
// @Param source query string false "Only this source"
// @Success 200 {object} response.Response{data=[]ingest.RecordSet}
// @Router /api/v1/records [get].
func (h *Handlers) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	source := sources.ID(r.URL.Query().Get("source"))

	key := cache.Key(cache.PrefixRecords, string(source))
	if cached, found := h.cache.Get(key); found {
		w.Header().Set("X-Cache", "HIT")
		response.OK(w, cached)
		return
	}

	sets, err := h.store.Records(r.Context(), source)
	if err != nil {
		h.logger.Error().Err(err).Msg("Records query failed")
		response.ErrorFromType(w, err)
		return
	}
	if sets == nil {
		sets = []ingest.RecordSet{}
	}

	h.cache.Set(key, sets)
	w.Header().Set("X-Cache", "MISS")
	response.OK(w, sets)
}

// HandleDeleteRecord handles DELETE /api/v1/records/{id}.
// @Summary Delete one record
// @Tags records
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 404 {object} response.Response{error=response.Error}
// @Router /api/v1/records/{id} [delete].
func (h *Handlers) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteRecord(r.Context(), id); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Invalidate(cache.PrefixRecords)
	response.OK(w, map[string]any{"deleted": id})
}

// HandleClearRecords handles DELETE /api/v1/records.
// @Summary Clear records of one source, or of all sources
// @Tags records
// @Produce json
// @Param source query string false "Only this source"
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/records [delete].
func (h *Handlers) HandleClearRecords(w http.ResponseWriter, r *http.Request) {
	source := sources.ID(r.URL.Query().Get("source"))
	if err := h.store.ClearRecords(r.Context(), source); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Invalidate(cache.PrefixRecords)
	response.OK(w, map[string]any{"cleared": string(source)})
}
