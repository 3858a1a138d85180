package store

import (
	"context"
	"os"
	"slices"
	"sort"
	"sync"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
	"github.com/agentstation/tablesync/pkg/normalize"
	"github.com/agentstation/tablesync/pkg/sources"
)

var _ ingest.Store = (*File)(nil)

type document struct {
	Records map[sources.ID]*ingest.RecordSet `yaml:"records"`
	History []ingest.HistoryEntry            `yaml:"history"`
}

// File is a Store kept in one YAML document that is rewritten on every change.
type File struct {
	mu   sync.Mutex
	path string
	doc  document
	now  func() utc.Time
}

// OpenFile loads the store at path. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	path = fsutil.ExpandHome(path)
	f := &File{
		path: path,
		doc:  document{Records: map[sources.ID]*ingest.RecordSet{}},
		now:  utc.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, &f.doc); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if f.doc.Records == nil {
		f.doc.Records = map[sources.ID]*ingest.RecordSet{}
	}
	return f, nil
}

// Path returns the document location.
func (f *File) Path() string {
	return f.path
}

// Close implements ingest.Store. Every change is already on disk.
func (f *File) Close() error {
	return nil
}

// AppendRecords implements ingest.Storage.
func (f *File) AppendRecords(_ context.Context, source sources.ID, columns []string, records []normalize.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	created := f.now()
	set := &ingest.RecordSet{
		Source:  source,
		Columns: slices.Clone(columns),
		Records: make([]ingest.StoredRecord, 0, len(records)),
	}
	for _, rec := range records {
		set.Records = append(set.Records, ingest.StoredRecord{
			ID:        uuid.NewString(),
			Values:    rec.Strings(),
			CreatedAt: created,
		})
	}

	prev, had := f.doc.Records[source]
	f.doc.Records[source] = set
	if err := f.flush(); err != nil {
		if had {
			f.doc.Records[source] = prev
		} else {
			delete(f.doc.Records, source)
		}
		return err
	}
	return nil
}

// RecordHistoryEntry implements ingest.Storage.
func (f *File) RecordHistoryEntry(_ context.Context, entry ingest.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.doc.History {
		if e.Source == entry.Source && e.Artifact == entry.Artifact {
			return errors.NewAlreadyExistsError("history", string(entry.Source)+"/"+entry.Artifact)
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.Time.IsZero() {
		entry.Timestamp = f.now()
	}

	f.doc.History = append(f.doc.History, entry)
	if err := f.flush(); err != nil {
		f.doc.History = f.doc.History[:len(f.doc.History)-1]
		return err
	}
	return nil
}

// History implements ingest.Store. Entries are newest first.
func (f *File) History(_ context.Context, filter ingest.HistoryFilter) ([]ingest.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []ingest.HistoryEntry
	for _, e := range f.doc.History {
		if filter.Source == "" || e.Source == filter.Source {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Time.After(out[j].Timestamp.Time) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteHistory implements ingest.Store.
func (f *File) DeleteHistory(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.doc.History, func(e ingest.HistoryEntry) bool { return e.ID == id })
	if i < 0 {
		return errors.NewNotFoundError("history", id)
	}
	prev := slices.Clone(f.doc.History)
	f.doc.History = slices.Delete(f.doc.History, i, i+1)
	if err := f.flush(); err != nil {
		f.doc.History = prev
		return err
	}
	return nil
}

// Records implements ingest.Store. An empty source returns every source.
func (f *File) Records(_ context.Context, source sources.ID) ([]ingest.RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []ingest.RecordSet
	for id, set := range f.doc.Records {
		if source != "" && id != source {
			continue
		}
		cp := *set
		cp.Source = id
		cp.Columns = slices.Clone(set.Columns)
		cp.Records = slices.Clone(set.Records)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

// DeleteRecord implements ingest.Store.
func (f *File) DeleteRecord(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, set := range f.doc.Records {
		i := slices.IndexFunc(set.Records, func(r ingest.StoredRecord) bool { return r.ID == id })
		if i < 0 {
			continue
		}
		prev := slices.Clone(set.Records)
		set.Records = slices.Delete(set.Records, i, i+1)
		if err := f.flush(); err != nil {
			set.Records = prev
			return err
		}
		return nil
	}
	return errors.NewNotFoundError("records", id)
}

// ClearRecords implements ingest.Store. An empty source clears everything.
func (f *File) ClearRecords(_ context.Context, source sources.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.doc.Records
	next := map[sources.ID]*ingest.RecordSet{}
	if source != "" {
		for id, set := range prev {
			if id != source {
				next[id] = set
			}
		}
	}
	f.doc.Records = next
	if err := f.flush(); err != nil {
		f.doc.Records = prev
		return err
	}
	return nil
}

func (f *File) flush() error {
	data, err := yaml.MarshalWithOptions(f.doc, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return errors.WrapParse("yaml", f.path, err)
	}
	return fsutil.WriteFileAtomic(f.path, data)
}
