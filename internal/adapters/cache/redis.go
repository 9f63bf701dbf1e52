// Package cache stores raw dataset bytes in Redis so restarts and
// multiple replicas avoid refetching from the sync backend.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix   = "puddin:dataset:"
	defaultPingTimeout = 5 * time.Second
)

// Option configures a RedisCache.
type Option func(*RedisCache)

// WithKeyPrefix sets the prefix applied to every key.
func WithKeyPrefix(prefix string) Option {
	return func(rc *RedisCache) {
		if prefix != "" {
			rc.prefix = prefix
		}
	}
}

// RedisCache handles caching of dataset payloads.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache connection and pings it.
func NewRedisCache(ctx context.Context, redisURL string, opts ...Option) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	rc := NewWithClient(redis.NewClient(opt), opts...)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := rc.HealthCheck(pingCtx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, opts ...Option) *RedisCache {
	rc := &RedisCache{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get returns the bytes stored under key. A missing key is reported as
// ok=false with a nil error.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	b, err := rc.client.Get(ctx, rc.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value under key with ttl. A zero ttl keeps the key forever.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := rc.client.Set(ctx, rc.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = rc.prefix + k
	}
	return rc.client.Del(ctx, full...).Err()
}
