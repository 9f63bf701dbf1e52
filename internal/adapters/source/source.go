// Package source implements dataset.Loader over the places synced stat
// files live: the drive-sync HTTP backend, a local directory, or a
// Postgres table, optionally fronted by a Redis byte cache.
package source

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// ByteSource fetches the raw bytes of a named dataset file.
type ByteSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Kind names the backend for logs and metrics.
	Kind() string
}

// Rooted is implemented by sources whose files live under a configurable
// root, such as a base URL or a directory.
type Rooted interface {
	Root() string
}

type bypassCacheKey struct{}

// BypassCache marks ctx so cached sources refetch from their origin and
// overwrite the cached copy.
func BypassCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassCacheKey{}, true)
}

func bypassCache(ctx context.Context) bool {
	v, _ := ctx.Value(bypassCacheKey{}).(bool)
	return v
}

// cleanName rejects names that would escape the source root.
func cleanName(name string) (string, error) {
	n := strings.TrimPrefix(strings.TrimSpace(name), "/")
	if n == "" || strings.Contains(n, "\\") || path.Clean("/"+n)[1:] != n {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return n, nil
}
