// Package ingest drives one ingestion run across every configured source.
//
// Sources are processed sequentially and independently: a failure in one
// never aborts the others. For each source the orchestrator fetches the
// newest artifact, skips it when the ledger already knows its name, and
// otherwise maps, normalizes and stores its rows before recording history
// and marking the artifact as ingested. An artifact is only marked after
// storage accepted it, so a crash in between causes a re-ingest, never a loss.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ledger"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/schema"
	"github.com/agentstation/tablesync/pkg/sources"
	"github.com/agentstation/tablesync/pkg/template"
)

// Orchestrator wires a fetcher, a reader, the ledger and storage together.
type Orchestrator struct {
	fetcher   sources.Fetcher
	reader    Reader
	tracker   Tracker
	storage   Storage
	template  *template.Template
	writer    ArtifactWriter
	observers []func(context.Context, Outcome)
	now       func() time.Time
	timeout   time.Duration
	separator string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithArtifactWriter writes a processed artifact per ingested source.
func WithArtifactWriter(w ArtifactWriter) Option {
	return func(o *Orchestrator) {
		o.writer = w
	}
}

// WithObserver registers a callback invoked after each source completes.
func WithObserver(fn func(context.Context, Outcome)) Option {
	return func(o *Orchestrator) {
		o.observers = append(o.observers, fn)
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithFetchTimeout bounds each fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithSeparator overrides the composite description separator.
func WithSeparator(sep string) Option {
	return func(o *Orchestrator) {
		o.separator = sep
	}
}

// New creates an orchestrator. A nil template uses template.Default.
func New(fetcher sources.Fetcher, reader Reader, tracker Tracker, storage Storage, tpl *template.Template, opts ...Option) *Orchestrator {
	if tpl == nil {
		tpl = template.Default()
	}
	o := &Orchestrator{
		fetcher:   fetcher,
		reader:    reader,
		tracker:   tracker,
		storage:   storage,
		template:  tpl,
		now:       time.Now,
		timeout:   constants.SourceFetchTimeout,
		separator: constants.CompositeSeparator,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Template returns the canonical template in use.
func (o *Orchestrator) Template() *template.Template {
	return o.template
}

// Run ingests each source in order and reports one outcome per source.
func (o *Orchestrator) Run(ctx context.Context, srcs []sources.Source) *Summary {
	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.FromContext(ctx)
	logger.Info().Int("sources", len(srcs)).Msg("Ingestion run started")

	for _, src := range srcs {
		started := o.now()
		var outcome Outcome
		srcCtx := logging.WithSource(ctx, string(src.ID))
		if err := ctx.Err(); err != nil {
			outcome = o.fail(srcCtx, src.ID, "", "run", fmt.Errorf("%w: %w", errors.ErrCanceled, err))
		} else {
			outcome = o.ingest(srcCtx, src)
		}
		outcome.Duration = o.now().Sub(started)
		summary.Outcomes = append(summary.Outcomes, outcome)

		for _, fn := range o.observers {
			fn(ctx, outcome)
		}
	}

	summary.Duration = o.now().Sub(summary.StartedAt)
	logger.Info().
		Int("ingested", summary.Count(StatusIngested)).
		Int("no_new_data", summary.Count(StatusNoNewData)).
		Int("no_artifact", summary.Count(StatusNoArtifact)).
		Int("errors", summary.Count(StatusError)).
		Int("records", summary.Records()).
		Dur("duration", summary.Duration).
		Msg("Ingestion run completed")
	return summary
}

func (o *Orchestrator) ingest(ctx context.Context, src sources.Source) Outcome {
	logger := logging.FromContext(ctx)

	artifact, err := o.fetch(ctx, src)
	if err != nil {
		if errors.IsNoArtifact(err) {
			logger.Info().Msg("No artifact available")
			return Outcome{Source: src.ID, Status: StatusNoArtifact}
		}
		return o.fail(ctx, src.ID, "", "fetch", err)
	}

	decision := o.tracker.Check(src.ID, artifact)
	if decision == ledger.DecisionNoArtifact {
		logger.Info().Msg("No artifact available")
		return Outcome{Source: src.ID, Status: StatusNoArtifact}
	}

	ctx = logging.WithArtifact(ctx, artifact.Name)
	logger = logging.FromContext(ctx)

	if decision == ledger.DecisionDuplicate {
		artifact.Data = nil
		logger.Info().Msg("Artifact already ingested, discarding")
		return Outcome{Source: src.ID, Status: StatusNoNewData, Artifact: artifact.Name}
	}

	table, err := o.reader.Read(ctx, artifact)
	if err != nil {
		return o.fail(ctx, src.ID, artifact.Name, "read", err)
	}

	mapper, err := schema.NewMapper(table.Headers, src.FieldMapping())
	if err != nil {
		return o.fail(ctx, src.ID, artifact.Name, "map", err)
	}
	drift := mapper.DriftWith(src.Headers)
	if len(drift) > 0 {
		logger.Warn().
			Err(&errors.SchemaDriftError{Source: string(src.ID), Missing: drift}).
			Msg("Expected headers missing, mapped fields left empty")
	}

	rows := make([]schema.Row, 0, len(table.Rows))
	for _, raw := range table.Rows {
		rows = append(rows, mapper.Project(raw))
	}
	result := normalize.New(o.template, src.Owner(), normalize.WithSeparator(o.separator)).Normalize(ctx, rows)
	columns := o.template.Columns()

	outcome := Outcome{
		Source:   src.ID,
		Status:   StatusIngested,
		Artifact: artifact.Name,
		Records:  len(result.Records),
		Splits:   result.Splits,
		Drift:    drift,
	}

	if o.writer != nil {
		name, err := o.writer.WriteProcessed(ctx, src.ID, columns, result.Records)
		if err != nil {
			return o.fail(ctx, src.ID, artifact.Name, "write", err)
		}
		outcome.ProcessedArtifact = name
	}

	if err := o.storage.AppendRecords(ctx, src.ID, columns, result.Records); err != nil {
		return o.fail(ctx, src.ID, artifact.Name, "store", err)
	}

	entry := HistoryEntry{
		ID:                uuid.NewString(),
		Source:            src.ID,
		Artifact:          artifact.Name,
		ProcessedArtifact: outcome.ProcessedArtifact,
		RecordCount:       outcome.Records,
		Status:            "success",
		Timestamp:         utc.New(o.now()),
	}
	if err := o.storage.RecordHistoryEntry(ctx, entry); err != nil {
		if !errors.IsAlreadyExists(err) {
			return o.fail(ctx, src.ID, artifact.Name, "history", err)
		}
		logger.Debug().Msg("History entry already present")
	}

	if err := o.tracker.MarkIngested(src.ID, artifact.Name); err != nil {
		return o.fail(ctx, src.ID, artifact.Name, "mark", err)
	}

	logger.Info().
		Int("records", outcome.Records).
		Int("splits", outcome.Splits).
		Msg("Artifact ingested")
	return outcome
}

// fetch applies the per-source timeout. Running out of it is reported as
// a TimeoutError whatever error the fetcher surfaced.
func (o *Orchestrator) fetch(ctx context.Context, src sources.Source) (*sources.Artifact, error) {
	if o.timeout <= 0 {
		return o.fetcher.Fetch(ctx, src)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	artifact, err := o.fetcher.Fetch(fetchCtx, src)
	if err != nil && ctx.Err() == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return nil, errors.NewTimeoutError("fetch", o.timeout.String(), err.Error())
	}
	return artifact, err
}

// fail logs err under the failing stage and returns the error outcome.
func (o *Orchestrator) fail(ctx context.Context, source sources.ID, artifact, stage string, err error) Outcome {
	wrapped := errors.NewIngestError(string(source), artifact, stage, err)
	logging.FromContext(logging.WithOperation(ctx, stage)).Error().Err(err).Msg("Ingestion stage failed")
	return Outcome{
		Source:   source,
		Status:   StatusError,
		Artifact: artifact,
		Err:      wrapped,
		Error:    wrapped.Error(),
	}
}
