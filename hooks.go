package tablesync

import (
	"sync"

	"github.com/agentstation/tablesync/pkg/ingest"
)

// Hook function types for ingestion events
type (
	// SourceIngestedHook is called after each source of a run completes,
	// whatever its status.
	SourceIngestedHook func(outcome ingest.Outcome)

	// RunCompletedHook is called once a run has processed every source.
	RunCompletedHook func(summary *ingest.Summary)
)

// Hooks provides event callback registration.
type Hooks interface {
	OnSourceIngested(SourceIngestedHook)
	OnRunCompleted(RunCompletedHook)
}

// hooks manages event callbacks
type hooks struct {
	mu               sync.RWMutex
	onSourceIngested []SourceIngestedHook
	onRunCompleted   []RunCompletedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnSourceIngested registers a per-source callback.
func (h *hooks) OnSourceIngested(fn SourceIngestedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSourceIngested = append(h.onSourceIngested, fn)
}

// OnRunCompleted registers a per-run callback.
func (h *hooks) OnRunCompleted(fn RunCompletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRunCompleted = append(h.onRunCompleted, fn)
}

func (h *hooks) triggerSource(outcome ingest.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSourceIngested {
		fn(outcome)
	}
}

func (h *hooks) triggerRun(summary *ingest.Summary) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRunCompleted {
		fn(summary)
	}
}

// OnSourceIngested registers a callback fired after each source of a run.
func (c *client) OnSourceIngested(fn SourceIngestedHook) {
	c.hooks.OnSourceIngested(fn)
}

// OnRunCompleted registers a callback fired after each run.
func (c *client) OnRunCompleted(fn RunCompletedHook) {
	c.hooks.OnRunCompleted(fn)
}
