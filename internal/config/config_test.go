package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/puddin/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.SourceKind, convey.ShouldEqual, config.SourceHTTP)
			convey.So(cfg.SourceBaseURL, convey.ShouldEqual, "https://puddins-drive-sync.onrender.com")
			convey.So(cfg.AmbiguityPolicy, convey.ShouldEqual, "first_match")
			convey.So(cfg.TiePolicy, convey.ShouldEqual, "team_a")
			convey.So(cfg.MaxConfidence, convey.ShouldEqual, 95.0)
			convey.So(cfg.TeamSeparator, convey.ShouldEqual, " vs. ")
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 15*time.Minute)
			convey.So(cfg.SyncInterval(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.SyncWorkers, convey.ShouldEqual, 4)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"log level":         func(c *config.Config) { c.LogLevel = "loud" },
			"log format":        func(c *config.Config) { c.LogFormat = "xml" },
			"source kind":       func(c *config.Config) { c.SourceKind = "s3" },
			"http without url":  func(c *config.Config) { c.SourceBaseURL = "" },
			"file without dir":  func(c *config.Config) { c.SourceKind = config.SourceFile },
			"postgres sans dsn": func(c *config.Config) { c.SourceKind = config.SourcePostgres },
			"fetch timeout":     func(c *config.Config) { c.FetchTimeoutMS = 0 },
			"negative ttl":      func(c *config.Config) { c.CacheTTLS = -1 },
			"negative interval": func(c *config.Config) { c.SyncIntervalS = -5 },
			"no sync workers":   func(c *config.Config) { c.SyncWorkers = 0 },
			"unknown sport":     func(c *config.Config) { c.Datasets = map[string]string{"XFL": "xfl.csv"} },
			"empty locator":     func(c *config.Config) { c.Datasets = map[string]string{"MLB": " "} },
			"ambiguity policy":  func(c *config.Config) { c.AmbiguityPolicy = "guess" },
			"tie policy":        func(c *config.Config) { c.TiePolicy = "coin_flip" },
			"confidence at 100": func(c *config.Config) { c.MaxConfidence = 100 },
			"confidence below":  func(c *config.Config) { c.MaxConfidence = 40 },
			"blank separator":   func(c *config.Config) { c.TeamSeparator = "  " },
		}
		for name, mutate := range cases {
			cfg := config.New(context.Background())
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			if err == nil {
				t.Errorf("%s: expected a validation error", name)
			}
		}
	})

	convey.Convey("Given valid alternatives", t, func() {
		cfg := config.New(context.Background())
		cfg.SourceKind = config.SourceFile
		cfg.SourceDir = "/data/stats"
		cfg.Datasets = map[string]string{"mlb": "MLB_2025.csv"}
		cfg.TiePolicy = "no_pick"
		cfg.AmbiguityPolicy = "reject_ambiguous"
		cfg.LogFormat = "json"

		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
