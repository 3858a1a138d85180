package tablesync

import (
	"context"

	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Ingester runs ingestion on demand.
type Ingester interface {
	// Ingest runs every configured source, or those named by WithSourceIDs.
	// Per-source failures are reported in the summary, not as the error;
	// the error is reserved for runs that could not start.
	Ingest(ctx context.Context, opts ...IngestOption) (*ingest.Summary, error)

	// IngestSources is Ingest for an explicit ID list; empty means all.
	IngestSources(ctx context.Context, ids []sources.ID) (*ingest.Summary, error)
}

// Ingest implements Ingester.
func (c *client) Ingest(ctx context.Context, opts ...IngestOption) (*ingest.Summary, error) {
	o := &ingestOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return c.IngestSources(ctx, o.ids)
}

// IngestSources implements Ingester.
func (c *client) IngestSources(ctx context.Context, ids []sources.ID) (*ingest.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	selected, err := c.sources.Select(ids...)
	if err != nil {
		return nil, err
	}

	c.runMu.Lock()
	defer c.runMu.Unlock()

	summary := c.orchestrator.Run(ctx, selected)
	if err := summary.Err(); err != nil {
		logging.FromContext(ctx).Warn().
			Int("failed", summary.Count(ingest.StatusError)).
			Msg("Some sources failed")
	}
	c.hooks.triggerRun(summary)
	return summary, nil
}
