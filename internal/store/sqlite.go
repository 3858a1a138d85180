// Package store persists canonical records and ingestion history.
//
// Two backends implement ingest.Store: a SQLite database for the service and
// a single YAML document for small deployments and tests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/sources"
)

var _ ingest.Store = (*SQLite)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS source_columns (
	source TEXT PRIMARY KEY,
	columns_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	position INTEGER NOT NULL,
	values_json TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_source ON records(source, position);

CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	artifact TEXT NOT NULL,
	processed_artifact TEXT,
	record_count INTEGER NOT NULL,
	status TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	UNIQUE(source, artifact)
);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
	now  func() utc.Time
}

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		path = fsutil.ExpandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "database", path, err)
	}
	// a single connection keeps ":memory:" coherent and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("initialize", "database", path, err)
	}
	return &SQLite{db: db, path: path, now: utc.Now}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AppendRecords implements ingest.Storage.
func (s *SQLite) AppendRecords(ctx context.Context, source sources.ID, columns []string, records []normalize.Record) error {
	cols, err := json.Marshal(columns)
	if err != nil {
		return errors.WrapParse("json", "columns", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("begin", "transaction", string(source), err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE source = ?`, string(source)); err != nil {
		return errors.WrapResource("delete", "records", string(source), err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO source_columns (source, columns_json) VALUES (?, ?)
		 ON CONFLICT(source) DO UPDATE SET columns_json = excluded.columns_json`,
		string(source), string(cols)); err != nil {
		return errors.WrapResource("upsert", "columns", string(source), err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (id, source, position, values_json, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapResource("prepare", "records", string(source), err)
	}
	defer func() { _ = stmt.Close() }()

	created := s.now().Time.UTC().Format(time.RFC3339Nano)
	for i, rec := range records {
		values, err := json.Marshal(rec.Strings())
		if err != nil {
			return errors.WrapParse("json", "record", err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), string(source), i, string(values), created); err != nil {
			return errors.WrapResource("insert", "record", string(source), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapResource("commit", "records", string(source), err)
	}
	return nil
}

// RecordHistoryEntry implements ingest.Storage.
func (s *SQLite) RecordHistoryEntry(ctx context.Context, entry ingest.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.Time.IsZero() {
		entry.Timestamp = s.now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO history
		 (id, source, artifact, processed_artifact, record_count, status, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Source), entry.Artifact, entry.ProcessedArtifact,
		entry.RecordCount, entry.Status, entry.Timestamp.Time.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.WrapResource("insert", "history", entry.Artifact, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewAlreadyExistsError("history", string(entry.Source)+"/"+entry.Artifact)
	}
	return nil
}

// History implements ingest.Store. Entries are newest first.
func (s *SQLite) History(ctx context.Context, filter ingest.HistoryFilter) ([]ingest.HistoryEntry, error) {
	query := `SELECT id, source, artifact, COALESCE(processed_artifact, ''), record_count, status, timestamp FROM history`
	var args []any
	if filter.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(filter.Source))
	}
	query += ` ORDER BY timestamp DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapResource("query", "history", "", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ingest.HistoryEntry
	for rows.Next() {
		var (
			e      ingest.HistoryEntry
			source string
			ts     string
		)
		if err := rows.Scan(&e.ID, &source, &e.Artifact, &e.ProcessedArtifact, &e.RecordCount, &e.Status, &ts); err != nil {
			return nil, errors.WrapResource("scan", "history", "", err)
		}
		e.Source = sources.ID(source)
		e.Timestamp, _ = utc.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteHistory implements ingest.Store.
func (s *SQLite) DeleteHistory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "history", id)
}

// Records implements ingest.Store. An empty source returns every source.
func (s *SQLite) Records(ctx context.Context, source sources.ID) ([]ingest.RecordSet, error) {
	query := `SELECT source, columns_json FROM source_columns`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY source`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapResource("query", "columns", string(source), err)
	}
	var sets []ingest.RecordSet
	for rows.Next() {
		var (
			src  string
			cols string
		)
		if err := rows.Scan(&src, &cols); err != nil {
			_ = rows.Close()
			return nil, errors.WrapResource("scan", "columns", src, err)
		}
		set := ingest.RecordSet{Source: sources.ID(src)}
		if err := json.Unmarshal([]byte(cols), &set.Columns); err != nil {
			_ = rows.Close()
			return nil, errors.WrapParse("json", "columns", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i := range sets {
		recs, err := s.records(ctx, sets[i].Source)
		if err != nil {
			return nil, err
		}
		sets[i].Records = recs
	}
	return sets, nil
}

func (s *SQLite) records(ctx context.Context, source sources.ID) ([]ingest.StoredRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, values_json, created_at FROM records WHERE source = ? ORDER BY position`, string(source))
	if err != nil {
		return nil, errors.WrapResource("query", "records", string(source), err)
	}
	defer func() { _ = rows.Close() }()

	recs := []ingest.StoredRecord{}
	for rows.Next() {
		var (
			r       ingest.StoredRecord
			values  string
			created string
		)
		if err := rows.Scan(&r.ID, &values, &created); err != nil {
			return nil, errors.WrapResource("scan", "records", string(source), err)
		}
		if err := json.Unmarshal([]byte(values), &r.Values); err != nil {
			return nil, errors.WrapParse("json", "record", err)
		}
		r.CreatedAt, _ = utc.Parse(time.RFC3339Nano, created)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteRecord implements ingest.Store.
func (s *SQLite) DeleteRecord(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "records", id)
}

// ClearRecords implements ingest.Store. An empty source clears everything.
func (s *SQLite) ClearRecords(ctx context.Context, source sources.ID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapResource("begin", "transaction", string(source), err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"records", "source_columns"} {
		query := `DELETE FROM ` + table
		var args []any
		if source != "" {
			query += ` WHERE source = ?`
			args = append(args, string(source))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.WrapResource("delete", table, string(source), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.WrapResource("commit", "records", string(source), err)
	}
	return nil
}

// table is one of the fixed names above, never user input.
func (s *SQLite) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return errors.WrapResource("delete", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError(table, id)
	}
	return nil
}
