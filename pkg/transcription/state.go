package transcription

import (
	"slices"
	"sync"
)

// Status labels reported while a request is processed
const (
	StatusIdle         = ""
	StatusLoading      = "loading audio"
	StatusTranscribing = "transcribing"
	StatusDone         = "done"
)

// Progress reported at each step of a request
const (
	ProgressLoading      = 0.1
	ProgressTranscribing = 0.3
	ProgressPartial      = ProgressTranscribing + 0.3
	ProgressDone         = 1.0
)

// State is the observable status of the orchestrator
type State struct {
	IsTranscribing bool
	Progress       float64
	StatusText     string
}

// StateTracker owns a State and notifies observers of every change.
// Observers run synchronously in update order and may call Snapshot.
type StateTracker struct {
	// notifyMu serializes updates together with their notifications
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextID    int
}

// NewStateTracker creates an idle tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{observers: make(map[int]func(State))}
}

// Snapshot returns a copy of the current state
func (t *StateTracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Observe registers fn for every subsequent state change and returns a
// function that unregisters it
func (t *StateTracker) Observe(fn func(State)) (cancel func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.observers, id)
			t.mu.Unlock()
		})
	}
}

func (t *StateTracker) update(mutate func(*State)) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	before := t.state
	mutate(&t.state)
	after := t.state
	ids := make([]int, 0, len(t.observers))
	for id := range t.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.observers[id])
	}
	t.mu.Unlock()

	if after == before {
		return
	}
	for _, fn := range fns {
		fn(after)
	}
}

// begin starts a new request
func (t *StateTracker) begin() {
	t.update(func(s *State) {
		s.IsTranscribing = true
		s.StatusText = StatusLoading
		s.Progress = ProgressLoading
	})
}

// advance moves to status and raises progress; progress never goes down
func (t *StateTracker) advance(status string, progress float64) {
	t.update(func(s *State) {
		s.StatusText = status
		if progress > s.Progress {
			s.Progress = progress
		}
	})
}

func (t *StateTracker) finish() {
	t.update(func(s *State) {
		s.IsTranscribing = false
		s.StatusText = StatusDone
		s.Progress = ProgressDone
	})
}

// fail returns to idle and leaves progress where it stopped
func (t *StateTracker) fail() {
	t.update(func(s *State) {
		s.IsTranscribing = false
		s.StatusText = StatusIdle
	})
}
