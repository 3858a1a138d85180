// Package watch triggers ingestion when a directory source receives a new export.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Trigger runs ingestion for the given sources.
type Trigger func(ctx context.Context, ids []sources.ID)

// Watcher batches filesystem events per source and fires the trigger once
// a source has been quiet for the debounce window.
type Watcher struct {
	fs       *fsnotify.Watcher
	trigger  Trigger
	debounce time.Duration

	dirs    map[string][]sources.Source
	mu      sync.Mutex
	pending map[sources.ID]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a source is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New watches the location of every directory source in list. Sources of
// other kinds are ignored.
func New(list []sources.Source, trigger Trigger, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapResource("create", "watcher", "", err)
	}

	w := &Watcher{
		fs:       fs,
		trigger:  trigger,
		debounce: constants.WatchDebounce,
		dirs:     map[string][]sources.Source{},
		pending:  map[sources.ID]time.Time{},
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, src := range list {
		if src.Kind != sources.KindDir {
			continue
		}
		dir := filepath.Clean(fsutil.ExpandHome(src.Location))
		if _, ok := w.dirs[dir]; !ok {
			if err := fs.Add(dir); err != nil {
				_ = fs.Close()
				return nil, errors.NewSourceUnavailableError(string(src.ID), dir, 0, err)
			}
		}
		w.dirs[dir] = append(w.dirs[dir], src)
	}
	return w, nil
}

// Dirs returns the number of watched directories.
func (w *Watcher) Dirs() int {
	return len(w.dirs)
}

// minPoll bounds how often pending sources are checked.
const minPoll = time.Millisecond

// pollInterval is how often pending sources are checked for quiet.
func (w *Watcher) pollInterval() time.Duration {
	return max(w.debounce/4, minPoll)
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	logger := logging.FromContext(ctx)
	tick := time.NewTicker(w.pollInterval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")

		case now := <-tick.C:
			if ids := w.due(now); len(ids) > 0 {
				w.trigger(ctx, ids)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, src := range w.dirs[filepath.Dir(event.Name)] {
		if !src.Accepts(name) {
			continue
		}
		logging.FromContext(ctx).Debug().
			Str("source", string(src.ID)).
			Str("file", name).
			Str("op", event.Op.String()).
			Msg("Export changed")
		w.pending[src.ID] = time.Now()
	}
}

// due removes and returns the sources quiet for the debounce window.
func (w *Watcher) due(now time.Time) []sources.ID {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ids []sources.ID
	for id, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ids = append(ids, id)
			delete(w.pending, id)
		}
	}
	slices.Sort(ids)
	return ids
}
