package ingest

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/hashicorp/go-multierror"

	"github.com/agentstation/tablesync/pkg/ledger"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Status is the per-source outcome of one run.
type Status string

// Outcome statuses.
const (
	StatusIngested   Status = "new_data_ingested"
	StatusNoNewData  Status = "no_new_data"
	StatusNoArtifact Status = "no_artifact_found"
	StatusError      Status = "error"
)

// Statuses lists every status in report order.
func Statuses() []Status {
	return []Status{StatusIngested, StatusNoNewData, StatusNoArtifact, StatusError}
}

// Outcome describes what happened to one source.
type Outcome struct {
	Source            sources.ID    `json:"source" yaml:"source"`
	Status            Status        `json:"status" yaml:"status"`
	Artifact          string        `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	ProcessedArtifact string        `json:"processed_artifact,omitempty" yaml:"processed_artifact,omitempty"`
	Records           int           `json:"records" yaml:"records"`
	Splits            int           `json:"splits" yaml:"splits"`
	Drift             []string      `json:"drift,omitempty" yaml:"drift,omitempty"`
	Duration          time.Duration `json:"duration" yaml:"duration"`
	Err               error         `json:"-" yaml:"-"`
	Error             string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary is the result of one orchestration run.
type Summary struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Outcomes  []Outcome     `json:"outcomes" yaml:"outcomes"`
}

// Count returns how many sources ended with status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Records returns the total number of canonical records stored.
func (s *Summary) Records() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Records
	}
	return n
}

// Err aggregates the errors of failed sources, or nil.
func (s *Summary) Err() error {
	var result *multierror.Error
	for _, o := range s.Outcomes {
		if o.Err != nil {
			result = multierror.Append(result, o.Err)
		}
	}
	return result.ErrorOrNil()
}

// HistoryEntry records one successful ingestion.
type HistoryEntry struct {
	ID                string     `json:"id" yaml:"id"`
	Source            sources.ID `json:"source" yaml:"source"`
	Artifact          string     `json:"artifact" yaml:"artifact"`
	ProcessedArtifact string     `json:"processed_artifact,omitempty" yaml:"processed_artifact,omitempty"`
	RecordCount       int        `json:"record_count" yaml:"record_count"`
	Status            string     `json:"status" yaml:"status"`
	Timestamp         utc.Time   `json:"timestamp" yaml:"timestamp"`
}

// HistoryFilter narrows a history listing. Zero values match everything.
type HistoryFilter struct {
	Source sources.ID
	Limit  int
}

// StoredRecord is a canonical record as persisted.
type StoredRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Values    []string  `json:"values" yaml:"values"`
	CreatedAt utc.Time  `json:"created_at" yaml:"created_at"`
}

// RecordSet is the current canonical records of one source.
type RecordSet struct {
	Source  sources.ID     `json:"source" yaml:"source"`
	Columns []string       `json:"columns" yaml:"columns"`
	Records []StoredRecord `json:"records" yaml:"records"`
}

// Storage receives the output of a run.
type Storage interface {
	// AppendRecords replaces the canonical records held for source.
	AppendRecords(ctx context.Context, source sources.ID, columns []string, records []normalize.Record) error
	// RecordHistoryEntry appends to history. A second entry for the same
	// (source, artifact) fails with errors.ErrAlreadyExists.
	RecordHistoryEntry(ctx context.Context, entry HistoryEntry) error
}

// Store is a Storage that can also be queried and edited.
type Store interface {
	Storage
	History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
	Records(ctx context.Context, source sources.ID) ([]RecordSet, error)
	DeleteRecord(ctx context.Context, id string) error
	ClearRecords(ctx context.Context, source sources.ID) error
	Close() error
}

// Table is a decoded artifact: a header row and raw data rows.
type Table struct {
	Headers []string
	Rows    [][]any
}

// Reader decodes an artifact into a table.
type Reader interface {
	Read(ctx context.Context, artifact *sources.Artifact) (*Table, error)
}

// ArtifactWriter persists the canonical records of a source as a file and
// returns the written artifact name.
type ArtifactWriter interface {
	WriteProcessed(ctx context.Context, source sources.ID, columns []string, records []normalize.Record) (string, error)
}

// Tracker is the ledger contract the orchestrator depends on.
type Tracker interface {
	Check(source sources.ID, artifact *sources.Artifact) ledger.Decision
	IsNew(source sources.ID, artifact string) bool
	MarkIngested(source sources.ID, artifact string) error
}
