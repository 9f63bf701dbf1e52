// Package repository holds the published dataset snapshot that predictions
// read from.
package repository

import (
	"context"

	"github.com/okian/puddin/internal/domain/dataset"
)

// Snapshot is an immutable set of datasets keyed by sport tag.
type Snapshot struct {
	Version     uint64
	PublishedAt int64 // unix seconds
	Datasets    map[string]*dataset.Dataset
}

// Store provides read access to the current snapshot and a single-writer
// publish path.
type Store interface {
	// Get returns the dataset for sport from the current snapshot.
	// Returns ErrNotPublished before the first publish and ErrNotFound for
	// a sport missing from the snapshot.
	Get(ctx context.Context, sport string) (*dataset.Dataset, error)

	// Publish atomically replaces the current snapshot and returns its version.
	Publish(ctx context.Context, datasets map[string]*dataset.Dataset) (uint64, error)

	// Current returns the current snapshot, or nil before the first publish.
	Current() *Snapshot

	// Count returns the number of datasets in the current snapshot.
	Count(ctx context.Context) int
}
