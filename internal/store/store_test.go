package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/cell"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/normalize"
)

var columns = []string{"REPORT_ID", "CUSTOMER_NAME", "PRODUCT_DESC"}

func record(id, owner, desc string) normalize.Record {
	return normalize.Record{cell.Text(id), cell.Text(owner), cell.Text(desc)}
}

func backends(t *testing.T) map[string]func() ingest.Store {
	t.Helper()
	return map[string]func() ingest.Store{
		"sqlite": func() ingest.Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "tablesync.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"file": func() ingest.Store {
			s, err := OpenFile(filepath.Join(t.TempDir(), "store.yaml"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestAppendRecordsReplaces(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()

			require.NoError(t, s.AppendRecords(ctx, "acme", columns, []normalize.Record{
				record("INV-001", "ACME", "Mouse"),
				record("INV-002", "ACME", "Keyboard"),
			}))
			require.NoError(t, s.AppendRecords(ctx, "acme", columns, []normalize.Record{
				record("INV-010", "ACME", "Monitor"),
			}))
			require.NoError(t, s.AppendRecords(ctx, "globex", columns, []normalize.Record{
				record("G-1", "GLOBEX", "Desk"),
			}))

			sets, err := s.Records(ctx, "")
			require.NoError(t, err)
			require.Len(t, sets, 2)
			assert.Equal(t, "acme", string(sets[0].Source))
			assert.Equal(t, columns, sets[0].Columns)
			require.Len(t, sets[0].Records, 1)
			assert.Equal(t, []string{"INV-010", "ACME", "Monitor"}, sets[0].Records[0].Values)
			assert.NotEmpty(t, sets[0].Records[0].ID)

			only, err := s.Records(ctx, "globex")
			require.NoError(t, err)
			require.Len(t, only, 1)
			assert.Equal(t, "Desk", only[0].Records[0].Values[2])
		})
	}
}

func TestRecordEdits(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.AppendRecords(ctx, "acme", columns, []normalize.Record{
				record("INV-001", "ACME", "Mouse"),
				record("INV-002", "ACME", "Keyboard"),
			}))
			require.NoError(t, s.AppendRecords(ctx, "globex", columns, []normalize.Record{
				record("G-1", "GLOBEX", "Desk"),
			}))

			sets, err := s.Records(ctx, "acme")
			require.NoError(t, err)
			require.NoError(t, s.DeleteRecord(ctx, sets[0].Records[0].ID))
			assert.True(t, errors.IsNotFound(s.DeleteRecord(ctx, "missing")))

			sets, err = s.Records(ctx, "acme")
			require.NoError(t, err)
			require.Len(t, sets[0].Records, 1)
			assert.Equal(t, "INV-002", sets[0].Records[0].Values[0])

			require.NoError(t, s.ClearRecords(ctx, "acme"))
			sets, err = s.Records(ctx, "")
			require.NoError(t, err)
			require.Len(t, sets, 1)
			assert.Equal(t, "globex", string(sets[0].Source))

			require.NoError(t, s.ClearRecords(ctx, ""))
			sets, err = s.Records(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, sets)
		})
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			entries := []ingest.HistoryEntry{
				{Source: "acme", Artifact: "jan.xlsx", RecordCount: 3, Status: "success", Timestamp: utc.New(base)},
				{Source: "globex", Artifact: "jan.csv", RecordCount: 1, Status: "success", Timestamp: utc.New(base.Add(time.Hour))},
				{Source: "acme", Artifact: "feb.xlsx", RecordCount: 2, Status: "success", Timestamp: utc.New(base.Add(2 * time.Hour))},
			}
			for _, e := range entries {
				require.NoError(t, s.RecordHistoryEntry(ctx, e))
			}

			err := s.RecordHistoryEntry(ctx, ingest.HistoryEntry{Source: "acme", Artifact: "jan.xlsx", Status: "success"})
			assert.True(t, errors.IsAlreadyExists(err))

			all, err := s.History(ctx, ingest.HistoryFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "feb.xlsx", all[0].Artifact)
			assert.Equal(t, "jan.xlsx", all[2].Artifact)
			assert.True(t, all[0].Timestamp.Time.Equal(base.Add(2*time.Hour)))

			acme, err := s.History(ctx, ingest.HistoryFilter{Source: "acme", Limit: 1})
			require.NoError(t, err)
			require.Len(t, acme, 1)
			assert.Equal(t, "feb.xlsx", acme[0].Artifact)
			assert.Equal(t, 2, acme[0].RecordCount)

			require.NoError(t, s.DeleteHistory(ctx, acme[0].ID))
			assert.True(t, errors.IsNotFound(s.DeleteHistory(ctx, acme[0].ID)))

			all, err = s.History(ctx, ingest.HistoryFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}

func setClock(s ingest.Store, now func() utc.Time) {
	switch s := s.(type) {
	case *SQLite:
		s.now = now
	case *File:
		s.now = now
	}
}

func TestStoreClock(t *testing.T) {
	ctx := context.Background()
	fixed := utc.New(time.Date(2024, 3, 1, 8, 30, 15, 0, time.UTC))

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			setClock(s, func() utc.Time { return fixed })

			require.NoError(t, s.AppendRecords(ctx, "acme", columns, []normalize.Record{record("INV-001", "ACME", "Mouse")}))
			require.NoError(t, s.RecordHistoryEntry(ctx, ingest.HistoryEntry{Source: "acme", Artifact: "mar.xlsx", Status: "success"}))

			sets, err := s.Records(ctx, "acme")
			require.NoError(t, err)
			require.Len(t, sets, 1)
			require.Len(t, sets[0].Records, 1)
			assert.True(t, fixed.Time.Equal(sets[0].Records[0].CreatedAt.Time))

			history, err := s.History(ctx, ingest.HistoryFilter{Source: "acme"})
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.True(t, fixed.Time.Equal(history[0].Timestamp.Time))
			assert.Equal(t, time.UTC, history[0].Timestamp.Time.Location())
		})
	}
}

func TestFileStoreReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.yaml")

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.AppendRecords(ctx, "acme", columns, []normalize.Record{record("INV-001", "ACME", "Mouse")}))
	require.NoError(t, s.RecordHistoryEntry(ctx, ingest.HistoryEntry{Source: "acme", Artifact: "jan.xlsx", Status: "success"}))

	reopened, err := OpenFile(path)
	require.NoError(t, err)

	sets, err := reopened.Records(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, []string{"INV-001", "ACME", "Mouse"}, sets[0].Records[0].Values)

	history, err := reopened.History(ctx, ingest.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "jan.xlsx", history[0].Artifact)
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("sqlite", filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	s, err = Open("file", filepath.Join(dir, "a.yaml"))
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	_, err = Open("postgres", "")
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
