package service

import (
	"sync"
	"time"

	"github.com/okian/puddin/pkg/metrics"
)

// State is the dataset readiness lifecycle.
type State int

// Readiness states. A refresh that fails after the first success keeps
// StateReady and records the error.
const (
	StateUninitialized State = iota
	StateSyncing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSyncing:
		return "syncing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ReadinessStatus is a point-in-time view of Readiness.
type ReadinessStatus struct {
	State      State     `json:"state"`
	Ready      bool      `json:"ready"`
	Version    uint64    `json:"snapshot_version"`
	LastSyncAt time.Time `json:"last_sync_at,omitzero"`
	LastError  string    `json:"last_error,omitempty"`
}

// Readiness tracks whether a dataset snapshot is available. It is owned
// by the Syncer and read by request handlers.
type Readiness struct {
	mu         sync.RWMutex
	state      State
	version    uint64
	lastSyncAt time.Time
	lastErr    string
}

// NewReadiness returns a handle in StateUninitialized.
func NewReadiness() *Readiness {
	metrics.UpdateReadinessState(int(StateUninitialized))
	return &Readiness{}
}

// Ready reports whether predictions can be served.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == StateReady
}

// State returns the current state.
func (r *Readiness) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Status returns a snapshot of the handle.
func (r *Readiness) Status() ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ReadinessStatus{
		State:      r.state,
		Ready:      r.state == StateReady,
		Version:    r.version,
		LastSyncAt: r.lastSyncAt,
		LastError:  r.lastErr,
	}
}

func (r *Readiness) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		r.set(StateSyncing)
	}
}

func (r *Readiness) succeed(version uint64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = version
	r.lastSyncAt = at
	r.lastErr = ""
	r.set(StateReady)
}

func (r *Readiness) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err.Error()
	if r.state != StateReady {
		r.set(StateFailed)
	}
}

// set assumes the lock is held.
func (r *Readiness) set(s State) {
	r.state = s
	metrics.UpdateReadinessState(int(s))
}
