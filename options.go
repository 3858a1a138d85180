package tablesync

import (
	"time"

	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/sources"
	"github.com/agentstation/tablesync/pkg/template"
)

// Option is a function that configures a client.
type Option func(*options) error

type options struct {
	config   Config
	fetcher  sources.Fetcher
	store    ingest.Store
	tracker  ingest.Tracker
	template *template.Template
	reader   ingest.Reader

	autoIngest bool
	interval   time.Duration
}

func defaults() *options {
	return &options{config: DefaultConfig()}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.interval == 0 {
		o.interval = o.config.Interval
	}
	return o, nil
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) error {
		o.config = cfg
		return nil
	}
}

// WithSources sets the source declarations.
func WithSources(list ...sources.Source) Option {
	return func(o *options) error {
		o.config.Sources = list
		return nil
	}
}

// WithFetcher overrides the fetcher; the default routes by source kind.
func WithFetcher(f sources.Fetcher) Option {
	return func(o *options) error {
		o.fetcher = f
		return nil
	}
}

// WithStorage injects the record store. The client does not close an
// injected store.
func WithStorage(s ingest.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithLedger injects the artifact identity tracker.
func WithLedger(t ingest.Tracker) Option {
	return func(o *options) error {
		o.tracker = t
		return nil
	}
}

// WithReader overrides how artifacts are decoded.
func WithReader(r ingest.Reader) Option {
	return func(o *options) error {
		o.reader = r
		return nil
	}
}

// WithTemplate sets the canonical template directly.
func WithTemplate(t *template.Template) Option {
	return func(o *options) error {
		o.template = t
		return nil
	}
}

// WithOutputDir enables processed artifacts written to dir.
func WithOutputDir(dir string) Option {
	return func(o *options) error {
		o.config.OutputDir = dir
		return nil
	}
}

// WithAutoIngest starts periodic ingestion when the client is created.
func WithAutoIngest(enabled bool) Option {
	return func(o *options) error {
		o.autoIngest = enabled
		return nil
	}
}

// WithAutoIngestInterval configures how often automatic runs happen.
func WithAutoIngestInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.interval = interval
		return nil
	}
}

// IngestOption narrows one ingestion run.
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	ids []sources.ID
}

// WithSourceIDs restricts a run to the given sources.
func WithSourceIDs(ids ...sources.ID) IngestOption {
	return func(o *ingestOptions) {
		o.ids = append(o.ids, ids...)
	}
}
