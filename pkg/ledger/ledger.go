// Package ledger records which artifacts each source has already delivered.
//
// The Tracker is the single writer of the ledger. It loads the persisted
// ledger once and rewrites the whole file after every mutation, so a crash
// never loses an acknowledged MarkIngested. Artifacts are identified by name
// only: a renamed file is a new artifact, an overwritten file with the same
// name is a duplicate.
//
// The persisted layout maps source IDs to the ordered list of ingested
// artifact names:
//
//	acme:
//	  - sales-2024-01.xlsx
//	  - sales-2024-02.xlsx
package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Decision is the outcome of checking an artifact against the ledger.
type Decision int

// Decisions.
const (
	DecisionNoArtifact Decision = iota
	DecisionDuplicate
	DecisionNew
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionDuplicate:
		return "duplicate"
	case DecisionNew:
		return "new"
	default:
		return "no_artifact"
	}
}

// Format is the on-disk encoding of the ledger.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from the file extension. Unknown extensions use YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Tracker is the artifact identity tracker.
type Tracker struct {
	mu      sync.RWMutex
	path    string
	format  Format
	entries map[sources.ID][]string
}

// Open loads the ledger at path. A missing file is an empty ledger.
func Open(path string) (*Tracker, error) {
	t := &Tracker{
		path:    path,
		format:  FormatFor(path),
		entries: make(map[sources.ID][]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	if err := t.decode(data); err != nil {
		return nil, errors.WrapParse(string(t.format), path, err)
	}
	return t, nil
}

// NewMemory returns a tracker that is never persisted.
func NewMemory() *Tracker {
	return &Tracker{entries: make(map[sources.ID][]string)}
}

// Path returns the ledger file, or "" for an in-memory tracker.
func (t *Tracker) Path() string {
	return t.path
}

// IsNew reports whether artifact has not been ingested for source.
// It has no side effects.
func (t *Tracker) IsNew(source sources.ID, artifact string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !slices.Contains(t.entries[source], artifact)
}

// Check classifies a fetched artifact. A nil artifact means the source had
// nothing to offer.
func (t *Tracker) Check(source sources.ID, artifact *sources.Artifact) Decision {
	if artifact == nil || artifact.Name == "" {
		return DecisionNoArtifact
	}
	if !t.IsNew(source, artifact.Name) {
		return DecisionDuplicate
	}
	return DecisionNew
}

// MarkIngested appends artifact to source's list and flushes the ledger
// before returning. Marking an already recorded artifact is a no-op.
func (t *Tracker) MarkIngested(source sources.ID, artifact string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if slices.Contains(t.entries[source], artifact) {
		return nil
	}
	prev, existed := t.entries[source]
	t.entries[source] = append(prev, artifact)
	if err := t.flush(); err != nil {
		if existed {
			t.entries[source] = prev
		} else {
			delete(t.entries, source)
		}
		return err
	}
	return nil
}

// Reset forgets every artifact of source.
func (t *Tracker) Reset(source sources.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.entries[source]
	if !ok {
		return errors.NewNotFoundError("ledger source", string(source))
	}
	delete(t.entries, source)
	if err := t.flush(); err != nil {
		t.entries[source] = prev
		return err
	}
	return nil
}

// Artifacts returns the ingested artifact names of source in ingestion order.
func (t *Tracker) Artifacts(source sources.ID) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.entries[source])
}

// Sources returns every source with at least one recorded artifact, sorted.
func (t *Tracker) Sources() []sources.ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]sources.ID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *Tracker) flush() error {
	if t.path == "" {
		return nil
	}
	data, err := t.encode()
	if err != nil {
		return errors.WrapParse(string(t.format), t.path, err)
	}
	return fsutil.WriteFileAtomic(t.path, data)
}

func (t *Tracker) encode() ([]byte, error) {
	doc := make(map[string][]string, len(t.entries))
	for id, names := range t.entries {
		doc[string(id)] = names
	}
	if t.format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.MarshalWithOptions(doc, yaml.Indent(2), yaml.IndentSequence(true))
}

func (t *Tracker) decode(data []byte) error {
	doc := map[string][]string{}
	var err error
	if t.format == FormatJSON {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return err
	}
	for id, names := range doc {
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				t.entries[sources.ID(id)] = append(t.entries[sources.ID(id)], n)
			}
		}
	}
	return nil
}
