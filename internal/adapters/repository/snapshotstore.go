package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/pkg/metrics"
)

var _ Store = (*SnapshotStore)(nil)

// SnapshotStore keeps the published datasets behind an atomic pointer.
// Readers never lock; Publish calls are serialized.
type SnapshotStore struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the dataset published for sport.
func (s *SnapshotStore) Get(ctx context.Context, sport string) (*dataset.Dataset, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "not_published")
		return nil, ErrNotPublished
	}
	ds, ok := snap.Datasets[sport]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sport)
	}
	return ds, nil
}

// Publish replaces the snapshot with a copy of datasets. Nil entries and an
// empty map are rejected so a partial sync never becomes visible.
func (s *SnapshotStore) Publish(ctx context.Context, datasets map[string]*dataset.Dataset) (uint64, error) {
	if len(datasets) == 0 {
		return 0, ErrEmptySnapshot
	}
	next := make(map[string]*dataset.Dataset, len(datasets))
	for sport, ds := range datasets {
		if ds == nil {
			return 0, fmt.Errorf("%w: %s is nil", ErrEmptySnapshot, sport)
		}
		next[sport] = ds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var version uint64 = 1
	if prev := s.snapshot.Load(); prev != nil {
		version = prev.Version + 1
	}
	ts := s.now()
	s.snapshot.Store(&Snapshot{Version: version, PublishedAt: ts.Unix(), Datasets: next})

	for sport, ds := range next {
		metrics.UpdateDatasetRows(sport, ds.Len())
	}
	metrics.IncrementSnapshotCount()
	metrics.UpdateSnapshotLastUnix(float64(ts.Unix()))
	return version, nil
}

// Current returns the current snapshot, or nil.
func (s *SnapshotStore) Current() *Snapshot {
	return s.snapshot.Load()
}

// Count returns the number of published datasets.
func (s *SnapshotStore) Count(ctx context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Datasets)
}

// Sports lists the sport tags in the current snapshot, sorted.
func (s *SnapshotStore) Sports() []string {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil
	}
	out := make([]string, 0, len(snap.Datasets))
	for sport := range snap.Datasets {
		out = append(out, sport)
	}
	sort.Strings(out)
	return out
}
