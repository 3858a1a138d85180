// Package tablesync ingests periodic tabular exports from independent
// sources into one canonical record set.
//
// A client owns the source registry, the artifact ledger and the record
// store, and runs the ingestion orchestrator over them on demand, on a
// timer, or when a directory source receives a new file. It also exposes
// heuristic table extraction for free text.
//
// Example usage:
//
//	ts, err := tablesync.New(
//	    tablesync.WithSources(sources.Source{
//	        ID:       "acme",
//	        Kind:     sources.KindDir,
//	        Location: "/srv/drops/acme",
//	        Mapping:  map[string]string{"identifier": "Invoice", "description": "Items"},
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ts.Close()
//
//	ts.OnSourceIngested(func(o ingest.Outcome) {
//	    log.Printf("%s: %s (%d records)", o.Source, o.Status, o.Records)
//	})
//
//	summary, err := ts.Ingest(ctx)
package tablesync

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/tablesync/internal/fetch"
	"github.com/agentstation/tablesync/internal/store"
	"github.com/agentstation/tablesync/internal/workbook"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/extract"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/ledger"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
	"github.com/agentstation/tablesync/pkg/template"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client runs ingestion over a fixed set of sources.
type Client interface {
	// Ingester runs ingestion on demand
	Ingester

	// AutoIngester controls periodic runs
	AutoIngester

	// Hooks provides access to event callback registration
	Hooks

	// Extract recovers a table from free text.
	Extract(text string) (*extract.Result, error)

	// Sources returns the configured sources in declaration order.
	Sources() []sources.Source

	// Store returns the record store.
	Store() ingest.Store

	// Ledger returns the artifact identity tracker.
	Ledger() ingest.Tracker

	// Template returns the canonical template.
	Template() *template.Template

	// Close stops automatic runs and releases the store if the client opened it.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	sources      *sources.Sources
	store        ingest.Store
	ownsStore    bool
	tracker      ingest.Tracker
	template     *template.Template
	orchestrator *ingest.Orchestrator
	hooks        *hooks

	// one run at a time
	runMu sync.Mutex

	// auto ingest state
	autoMu     sync.Mutex
	autoCancel context.CancelFunc
	autoDone   chan struct{}
}

// New creates a client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := sources.NewSources(cfg.Sources...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		sources: registry,
		hooks:   newHooks(),
	}

	c.template = o.template
	if c.template == nil {
		if c.template, err = cfg.Template.Load(context.Background()); err != nil {
			return nil, err
		}
	}

	c.tracker = o.tracker
	if c.tracker == nil {
		if c.tracker, err = ledger.Open(cfg.LedgerPath()); err != nil {
			return nil, errors.WrapResource("open", "ledger", cfg.LedgerPath(), err)
		}
		logging.Debug().Str("ledger", cfg.LedgerPath()).Msg("Ledger loaded")
	}

	c.store = o.store
	if c.store == nil {
		if c.store, err = store.Open(cfg.Store.Backend, cfg.StorePath()); err != nil {
			return nil, err
		}
		c.ownsStore = true
		logging.Debug().Str("backend", cfg.Store.Backend).Str("path", cfg.StorePath()).Msg("Store opened")
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = fetch.NewRouter()
	}
	reader := o.reader
	if reader == nil {
		reader = workbook.NewReader()
	}

	orchOpts := []ingest.Option{
		ingest.WithObserver(func(_ context.Context, outcome ingest.Outcome) {
			c.hooks.triggerSource(outcome)
		}),
	}
	if cfg.Separator != "" {
		orchOpts = append(orchOpts, ingest.WithSeparator(cfg.Separator))
	}
	if cfg.OutputDir != "" {
		orchOpts = append(orchOpts, ingest.WithArtifactWriter(workbook.NewWriter(cfg.OutputDir)))
	}
	c.orchestrator = ingest.New(fetcher, reader, c.tracker, c.store, c.template, orchOpts...)

	if o.autoIngest {
		if err := c.AutoIngestOn(); err != nil {
			_ = c.Close()
			return nil, errors.WrapResource("start", "auto-ingest", "", err)
		}
	}
	return c, nil
}

// Sources returns the configured sources.
func (c *client) Sources() []sources.Source {
	return c.sources.List()
}

// Store returns the record store.
func (c *client) Store() ingest.Store {
	return c.store
}

// Ledger returns the tracker.
func (c *client) Ledger() ingest.Tracker {
	return c.tracker
}

// Template returns the canonical template.
func (c *client) Template() *template.Template {
	return c.template
}

// Extract runs the extraction cascade over text.
func (c *client) Extract(text string) (*extract.Result, error) {
	return extract.Extract(text)
}

// Close stops automatic runs and closes an owned store.
func (c *client) Close() error {
	if err := c.AutoIngestOff(); err != nil {
		return err
	}
	if c.ownsStore {
		return c.store.Close()
	}
	return nil
}

func (c *client) interval() time.Duration {
	if c.options.interval > 0 {
		return c.options.interval
	}
	return constants.DefaultIngestInterval
}
