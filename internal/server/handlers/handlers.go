// Package handlers provides the HTTP request handlers of the tablesync API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync/internal/server/cache"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Ingester runs ingestion for the given sources, or for every source when
// ids is empty.
type Ingester interface {
	IngestSources(ctx context.Context, ids []sources.ID) (*ingest.Summary, error)
}

// IngesterFunc adapts a function to Ingester.
type IngesterFunc func(ctx context.Context, ids []sources.ID) (*ingest.Summary, error)

// IngestSources implements Ingester.
func (f IngesterFunc) IngestSources(ctx context.Context, ids []sources.ID) (*ingest.Summary, error) {
	return f(ctx, ids)
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	ingester Ingester
	store    ingest.Store
	cache    *cache.Cache
	logger   *zerolog.Logger
}

// New creates a Handlers instance. A nil ingester disables POST /ingest.
func New(ingester Ingester, store ingest.Store, cache *cache.Cache, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		ingester: ingester,
		store:    store,
		cache:    cache,
		logger:   logger,
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func queryInt(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
