package fetch

import (
	"context"

	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/sources"
)

var _ sources.Fetcher = (*Router)(nil)

// Router dispatches to a fetcher by source kind.
type Router struct {
	fetchers map[sources.Kind]sources.Fetcher
}

// NewRouter returns a router serving dir and http sources with the
// default fetchers.
func NewRouter() *Router {
	return &Router{fetchers: map[sources.Kind]sources.Fetcher{
		sources.KindDir:  NewDirectory(),
		sources.KindHTTP: NewHTTP(nil),
	}}
}

// Handle registers f for kind, replacing any previous fetcher.
func (r *Router) Handle(kind sources.Kind, f sources.Fetcher) *Router {
	r.fetchers[kind] = f
	return r
}

// Fetch implements sources.Fetcher.
func (r *Router) Fetch(ctx context.Context, src sources.Source) (*sources.Artifact, error) {
	f, ok := r.fetchers[src.Kind]
	if !ok {
		return nil, errors.NewConfigError("source "+string(src.ID), "no fetcher for kind "+string(src.Kind), nil)
	}
	return f.Fetch(ctx, src)
}
