// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Validation errors wrap ErrInvalidConfig; load errors wrap ErrLoadConfig.
package config

import (
	"context"
	"time"
)

// Dataset source kinds.
const (
	SourceHTTP     = "http"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceKind picks where datasets are read from: http, file or postgres.
	SourceKind string `koanf:"source_kind"`

	// SourceBaseURL is the drive-sync backend serving {base}/files/{name}.
	SourceBaseURL string `koanf:"source_base_url"`

	// SourceDir holds synced files when SourceKind is file.
	SourceDir string `koanf:"source_dir"`

	// PostgresDSN is the lib/pq connection string when SourceKind is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// FetchTimeoutMS bounds one dataset fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RedisURL enables the dataset byte cache when set.
	RedisURL string `koanf:"redis_url"`

	// CacheTTLS is the cache entry lifetime in seconds; 0 keeps entries.
	CacheTTLS int `koanf:"cache_ttl_s"`

	// Datasets overrides the dataset locator per sport tag.
	Datasets map[string]string `koanf:"datasets"`

	// AmbiguityPolicy is first_match or reject_ambiguous.
	AmbiguityPolicy string `koanf:"ambiguity_policy"`

	// TiePolicy is team_a, team_b or no_pick.
	TiePolicy string `koanf:"tie_policy"`

	// MaxConfidence caps the reported confidence; must be in [50, 100).
	MaxConfidence float64 `koanf:"max_confidence"`

	// TeamSeparator splits a combined teams string.
	TeamSeparator string `koanf:"team_separator"`

	// SyncIntervalS refreshes datasets periodically; 0 disables.
	SyncIntervalS int `koanf:"sync_interval_s"`

	// SyncWorkers bounds concurrent dataset fetches during a sync.
	SyncWorkers int `koanf:"sync_workers"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		SourceKind:      SourceHTTP,
		SourceBaseURL:   "https://puddins-drive-sync.onrender.com",
		FetchTimeoutMS:  30_000,
		CacheTTLS:       900,
		Datasets:        map[string]string{},
		AmbiguityPolicy: "first_match",
		TiePolicy:       "team_a",
		MaxConfidence:   95,
		TeamSeparator:   " vs. ",
		SyncWorkers:     4,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLS as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLS) * time.Second
}

// SyncInterval returns SyncIntervalS as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalS) * time.Second
}
