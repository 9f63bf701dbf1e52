package config

import (
	"fmt"
	"strings"

	"github.com/okian/puddin/internal/domain/matcher"
	"github.com/okian/puddin/internal/domain/scoring"
	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/pkg/logger"
)

// Validate checks every field and returns the first problem wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("unknown log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}

	switch c.SourceKind {
	case SourceHTTP:
		if strings.TrimSpace(c.SourceBaseURL) == "" {
			return invalid("source_base_url is required for source_kind http")
		}
	case SourceFile:
		if strings.TrimSpace(c.SourceDir) == "" {
			return invalid("source_dir is required for source_kind file")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return invalid("postgres_dsn is required for source_kind postgres")
		}
	default:
		return invalid("unknown source_kind %q", c.SourceKind)
	}
	if c.FetchTimeoutMS <= 0 {
		return invalid("fetch_timeout_ms must be positive")
	}
	if c.CacheTTLS < 0 {
		return invalid("cache_ttl_s must not be negative")
	}
	if c.SyncIntervalS < 0 {
		return invalid("sync_interval_s must not be negative")
	}
	if c.SyncWorkers < 1 {
		return invalid("sync_workers must be at least 1")
	}

	if _, err := sport.NewResolver(c.Datasets); err != nil {
		return invalid("datasets: %v", err)
	}
	if _, err := matcher.ParsePolicy(c.AmbiguityPolicy); err != nil {
		return invalid("%v", err)
	}
	if _, err := scoring.ParseTiePolicy(c.TiePolicy); err != nil {
		return invalid("%v", err)
	}
	if c.MaxConfidence < 50 || c.MaxConfidence >= 100 {
		return invalid("max_confidence must be in [50, 100), got %v", c.MaxConfidence)
	}
	if strings.TrimSpace(c.TeamSeparator) == "" {
		return invalid("team_separator must contain a visible character")
	}
	return nil
}
