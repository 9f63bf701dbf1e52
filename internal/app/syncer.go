package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/puddin/internal/adapters/repository"
	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/pkg/logger"
	"github.com/okian/puddin/pkg/metrics"
)

// Publisher is the write side of the snapshot store.
type Publisher interface {
	Publish(ctx context.Context, datasets map[string]*dataset.Dataset) (uint64, error)
}

// SyncOption applies a configuration option to the Syncer.
type SyncOption func(*Syncer)

// WithSyncInterval enables periodic refresh. Zero disables it.
func WithSyncInterval(d time.Duration) SyncOption {
	return func(s *Syncer) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithSyncWorkers bounds how many datasets are fetched at once.
func WithSyncWorkers(n int) SyncOption {
	return func(s *Syncer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSyncLogger sets the syncer's logger.
func WithSyncLogger(l logger.Logger) SyncOption {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSyncClock sets the time source used for readiness timestamps.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// Syncer loads every supported sport's dataset and publishes them as one
// snapshot. Syncs are serialized; only a fully loaded set is published.
type Syncer struct {
	mu        sync.Mutex
	loader    dataset.Loader
	store     Publisher
	resolver  *sport.Resolver
	readiness *Readiness
	interval  time.Duration
	workers   int
	now       func() time.Time
	logger    logger.Logger
}

// DefaultSyncWorkers is the default fetch concurrency, one per sport.
const DefaultSyncWorkers = 4

// NewSyncer creates a syncer that publishes to store.
func NewSyncer(loader dataset.Loader, store Publisher, resolver *sport.Resolver, opts ...SyncOption) *Syncer {
	s := &Syncer{
		loader:    loader,
		store:     store,
		resolver:  resolver,
		readiness: NewReadiness(),
		workers:   DefaultSyncWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sync")
	}
	return s
}

// Readiness returns the handle this syncer drives.
func (s *Syncer) Readiness() *Readiness { return s.readiness }

// Interval returns the periodic refresh interval.
func (s *Syncer) Interval() time.Duration { return s.interval }

// Sync loads all datasets and publishes them. On failure the previous
// snapshot, if any, stays published.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	s.readiness.begin()

	loaded, err := s.loadAll(ctx, s.resolver.Supported())
	if err != nil {
		return s.failed(ctx, start, err)
	}

	version, err := s.store.Publish(ctx, loaded)
	if err != nil {
		return s.failed(ctx, start, fmt.Errorf("publish snapshot: %w", err))
	}
	end := s.now()
	s.readiness.succeed(version, end)
	metrics.RecordDatasetSync("success", float64(end.Sub(start).Milliseconds()))
	s.logger.Info(ctx, "dataset snapshot published",
		logger.Int("datasets", len(loaded)),
		logger.Any("version", version),
		logger.Duration("took", end.Sub(start)),
	)
	return nil
}

// loadAll fetches defs on a fixed pool of workers. The returned error is
// the failure of the earliest sport in defs order, so it does not depend
// on scheduling.
func (s *Syncer) loadAll(ctx context.Context, defs []sport.Definition) (map[string]*dataset.Dataset, error) {
	type result struct {
		ds  *dataset.Dataset
		err error
	}
	results := make([]result, len(defs))
	jobs := make(chan int)

	workers := min(s.workers, len(defs))
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				ds, err := s.load(ctx, defs[i])
				results[i] = result{ds: ds, err: err}
			}
		}()
	}
	for i := range defs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	loaded := make(map[string]*dataset.Dataset, len(defs))
	for i, def := range defs {
		if results[i].err != nil {
			return nil, results[i].err
		}
		loaded[string(def.Tag)] = results[i].ds
	}
	return loaded, nil
}

func (s *Syncer) load(ctx context.Context, def sport.Definition) (*dataset.Dataset, error) {
	ref := dataset.Ref{Sport: string(def.Tag), Locator: def.Dataset}
	ds, err := s.loader.LoadDataset(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load %s dataset %s: %w", def.Tag, def.Dataset, err)
	}
	if ds == nil {
		return nil, fmt.Errorf("load %s dataset %s: %w", def.Tag, def.Dataset, dataset.ErrMalformedDataset)
	}
	required := append([]string{def.TeamColumn}, def.Fields...)
	for _, col := range required {
		if !ds.HasColumn(col) {
			return nil, fmt.Errorf("%s dataset %s: %w: missing column %q", def.Tag, def.Dataset, dataset.ErrMalformedDataset, col)
		}
	}
	return ds, nil
}

func (s *Syncer) failed(ctx context.Context, start time.Time, err error) error {
	s.readiness.fail(err)
	metrics.RecordDatasetSync("failure", float64(s.now().Sub(start).Milliseconds()))
	s.logger.Error(ctx, "dataset sync failed",
		logger.String("state", s.readiness.State().String()),
		logger.Error(err),
	)
	return err
}

// Run syncs once and then on every interval tick until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	_ = s.Sync(ctx)
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Sync(ctx)
		}
	}
}

var _ Publisher = (*repository.SnapshotStore)(nil)
