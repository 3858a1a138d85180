package handlers

import (
	"net/http"

	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/internal/server/response"
	"github.com/agentstation/tablesync/pkg/sources"
)

// HandleIngest handles POST /api/v1/ingest.
// @Summary Run ingestion now
// @Description Ingests the named sources, or all configured sources
// @Tags admin
// @Produce json
// @Param source query []string false "Source IDs" collectionFormat(multi)
// @Success 200 {object} response.Response{data=ingest.Summary}
// @Failure 503 {object} response.Response{error=response.Error}
// @Router /api/v1/ingest [post].
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if h.ingester == nil {
		response.ServiceUnavailable(w, "Ingestion is not configured")
		return
	}

	var ids []sources.ID
	for _, id := range r.URL.Query()["source"] {
		ids = append(ids, sources.ID(id))
	}

	summary, err := h.ingester.IngestSources(r.Context(), ids)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Invalidate(cache.PrefixHistory, cache.PrefixRecords)
	response.OK(w, summary)
}
