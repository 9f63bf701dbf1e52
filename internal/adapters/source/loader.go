package source

import (
	"context"
	"time"

	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/pkg/metrics"
)

// BytesLoader fetches a file from a ByteSource and decodes it by extension.
type BytesLoader struct {
	src ByteSource
}

var _ dataset.Loader = (*BytesLoader)(nil)

// NewBytesLoader creates a loader over src.
func NewBytesLoader(src ByteSource) *BytesLoader {
	return &BytesLoader{src: src}
}

// LoadDataset implements dataset.Loader. The format is checked before any
// I/O so an unsupported locator never reaches the backend.
func (l *BytesLoader) LoadDataset(ctx context.Context, ref dataset.Ref) (*dataset.Dataset, error) {
	if _, err := dataset.FormatOf(ref.Locator); err != nil {
		return nil, err
	}
	start := time.Now()
	b, err := l.src.Fetch(ctx, ref.Locator)
	if err != nil {
		metrics.RecordErrorByComponent("source", l.src.Kind())
		return nil, err
	}
	ds, err := dataset.Decode(ref, b)
	if err != nil {
		metrics.RecordErrorByComponent("source", "decode")
		return nil, err
	}
	metrics.RecordDatasetLoadLatency(l.src.Kind(), float64(time.Since(start).Milliseconds()))
	return ds, nil
}
