package images

import (
	"sync"

	"github.com/mwiater/nvsbench/internal/results"
)

// Status is the state of the image comparison view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Token identifies one outstanding request.
type Token uint64

// Snapshot is the visible state of a Tracker.
type Snapshot struct {
	Key    results.Key
	Status Status
	Pairs  []Pair
	Err    error
}

// Tracker keeps only the latest selection's outcome. Completions for
// requests issued before the most recent Begin or Reset are discarded.
type Tracker struct {
	mu      sync.Mutex
	current Token
	state   Snapshot
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{state: Snapshot{Status: StatusIdle}}
}

// Begin starts a request for key and returns its token.
func (t *Tracker) Begin(key results.Key) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.state = Snapshot{Key: key, Status: StatusLoading}
	return t.current
}

// Complete applies the outcome of the request identified by token. It
// reports false, and changes nothing, when a newer request has superseded
// it.
func (t *Tracker) Complete(token Token, pairs []Pair, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.current || t.state.Status != StatusLoading {
		return false
	}
	if err != nil {
		t.state.Status = StatusFailed
		t.state.Err = err
		t.state.Pairs = nil
		return true
	}
	t.state.Status = StatusReady
	t.state.Pairs = append([]Pair(nil), pairs...)
	return true
}

// Reset clears the view and invalidates any outstanding request.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.state = Snapshot{Status: StatusIdle}
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	s.Pairs = append([]Pair(nil), t.state.Pairs...)
	return s
}
