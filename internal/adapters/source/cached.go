package source

import (
	"context"
	"time"

	"github.com/okian/puddin/pkg/logger"
	"github.com/okian/puddin/pkg/metrics"
)

// BytesCache stores raw file payloads. A miss is ok=false with nil error.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithCacheLogger sets the logger used for cache failures.
func WithCacheLogger(l logger.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cached fronts a ByteSource with a BytesCache. Cache failures are logged
// and fall through to the origin; they never fail a fetch.
type Cached struct {
	origin ByteSource
	cache  BytesCache
	ttl    time.Duration
	logger logger.Logger
}

// NewCached wraps origin. A zero ttl keeps entries until overwritten.
func NewCached(origin ByteSource, cache BytesCache, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{origin: origin, cache: cache, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("cache")
	}
	return c
}

// Kind implements ByteSource.
func (c *Cached) Kind() string { return c.origin.Kind() }

// Fetch implements ByteSource.
func (c *Cached) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := c.key(name)

	if !bypassCache(ctx) {
		b, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			c.logger.Warn(ctx, "dataset cache read failed", logger.String("key", key), logger.Error(err))
		case ok:
			metrics.RecordCacheLookup("hit")
			return b, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	b, err := c.origin.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
		c.logger.Warn(ctx, "dataset cache write failed", logger.String("key", key), logger.Error(err))
	} else {
		metrics.RecordCacheWrite(len(b))
	}
	return b, nil
}

// key scopes entries to the origin's root so repointing the backend never
// serves bytes cached from the old one.
func (c *Cached) key(name string) string {
	if r, ok := c.origin.(Rooted); ok {
		return c.origin.Kind() + ":" + r.Root() + ":" + name
	}
	return c.origin.Kind() + ":" + name
}
