package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/puddin/internal/adapters/source"
	"github.com/okian/puddin/internal/config"
	"github.com/okian/puddin/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var fixtureFiles = map[string]string{
	"MLB.csv": "Team,wOBA,xFIP,Barrel %\nNew York Yankees,.341,3.78,10.5\nBoston Red Sox,.322,4.01,8.9\n",
	"NBA.csv": "Team,ORtg,eFG%,TS%\nBoston Celtics,120,57,60\nDenver Nuggets,118,58,61\n",
	"NHL.csv": "Team,GF/GP,SV%,PP%\nBoston Bruins,3.4,.912,24\nToronto Maple Leafs,3.6,.905,22\n",
	"NFL.json": `[{"Team":"Kansas City Chiefs","Off EPA/play":0.12,"Def EPA/play":-0.05,"Turnover Diff":8},` +
		`{"Team":"Buffalo Bills","Off EPA/play":0.15,"Def EPA/play":-0.02,"Turnover Diff":5}]`,
}

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtureFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	cfg := config.New(context.Background())
	cfg.SourceKind = config.SourceFile
	cfg.SourceDir = dir
	cfg.Datasets = map[string]string{"MLB": "MLB.csv", "NBA": "NBA.csv", "NHL": "NHL.csv", "NFL": "NFL.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg
}

func TestNewLoader(t *testing.T) {
	convey.Convey("Given a file source config", t, func() {
		ctx := context.Background()
		cfg := fileConfig(t)
		log := logger.Get()

		convey.Convey("When no redis is configured", func() {
			loader, closeFn, err := newLoader(ctx, cfg, log)
			defer closeFn()

			convey.Convey("Then a plain bytes loader is built", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := loader.(*source.BytesLoader)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When redis is reachable", func() {
			mr := miniredis.RunT(t)
			cfg.RedisURL = "redis://" + mr.Addr()
			loader, closeFn, err := newLoader(ctx, cfg, log)
			defer closeFn()

			convey.Convey("Then loads populate the cache", func() {
				convey.So(err, convey.ShouldBeNil)
				svc, err := newService(cfg, loader, log)
				convey.So(err, convey.ShouldBeNil)
				_, err = svc.Refresh(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(mr.Keys()), convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When redis is unreachable", func() {
			cfg.RedisURL = "redis://127.0.0.1:1"
			loader, closeFn, err := newLoader(ctx, cfg, log)
			defer closeFn()

			convey.Convey("Then caching is disabled rather than failing", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(loader, convey.ShouldNotBeNil)
			})
		})
	})

	convey.Convey("Given an http source with a bad base url", t, func() {
		cfg := config.New(context.Background())
		cfg.SourceBaseURL = "ftp://example.com"

		convey.Convey("Then the loader cannot be built", func() {
			_, _, err := newLoader(context.Background(), cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestApplicationWiring(t *testing.T) {
	convey.Convey("Given a fully wired application over local files", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := fileConfig(t)
		cfg.TiePolicy = "no_pick"
		log := logger.Get()
		loader, closeFn, err := newLoader(ctx, cfg, log)
		convey.So(err, convey.ShouldBeNil)
		defer closeFn()

		svc, err := newService(cfg, loader, log)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		for !svc.Readiness().Ready && ctx.Err() == nil {
			time.Sleep(10 * time.Millisecond)
		}
		convey.So(svc.Readiness().Ready, convey.ShouldBeTrue)

		h := newHandler(ctx, svc, log)
		serve := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}

		convey.Convey("When predicting an MLB game", func() {
			w := serve(http.MethodPost, "/predict", `{"sport":"MLB","teams":"Yankees vs. Red Sox"}`)

			convey.Convey("Then the configured datasets are used", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "(from MLB.csv)")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "New York Yankees wins")
			})
		})

		convey.Convey("When predicting an NFL game from JSON data", func() {
			w := serve(http.MethodPost, "/predict", `{"sport":"nfl","team_a":"Chiefs","team_b":"Bills"}`)

			convey.Convey("Then the JSON dataset is read", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "NFL.json")
			})
		})

		convey.Convey("When the docs and banner are requested", func() {
			convey.So(serve(http.MethodGet, "/", "").Body.String(), convey.ShouldContainSubstring, "POST to /predict")
			convey.So(serve(http.MethodGet, "/openapi.yaml", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/api-docs", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When stats are requested", func() {
			w := serve(http.MethodGet, "/stats", "")

			convey.Convey("Then the configured policies are reported", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"tiePolicy":"no_pick"`)
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the updater returns", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
