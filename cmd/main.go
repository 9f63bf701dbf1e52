package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/puddin/internal/adapters/cache"
	"github.com/okian/puddin/internal/adapters/http/api"
	"github.com/okian/puddin/internal/adapters/http/swagger"
	"github.com/okian/puddin/internal/adapters/repository"
	"github.com/okian/puddin/internal/adapters/source"
	app "github.com/okian/puddin/internal/app"
	"github.com/okian/puddin/internal/config"
	"github.com/okian/puddin/internal/domain/dataset"
	"github.com/okian/puddin/internal/domain/matcher"
	"github.com/okian/puddin/internal/domain/narrative"
	"github.com/okian/puddin/internal/domain/scoring"
	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/pkg/logger"
	"github.com/okian/puddin/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "predictor exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()

	loader, closeLoader, err := newLoader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLoader()

	svc, err := newService(cfg, loader, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newLoader builds the dataset loader for the configured source kind. The
// returned func releases any connections it opened.
func newLoader(ctx context.Context, cfg *config.Config, log logger.Logger) (dataset.Loader, func(), error) {
	switch cfg.SourceKind {
	case config.SourcePostgres:
		db, err := source.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return source.NewPostgresLoader(db), func() { _ = db.Close() }, nil

	case config.SourceFile:
		return withCache(ctx, cfg, log, source.NewFileSource(cfg.SourceDir))

	default:
		src, err := source.NewHTTPSource(cfg.SourceBaseURL, source.WithFetchTimeout(cfg.FetchTimeout()))
		if err != nil {
			return nil, nil, err
		}
		return withCache(ctx, cfg, log, src)
	}
}

// withCache fronts src with Redis when a redis_url is configured. An
// unreachable Redis only disables caching.
func withCache(ctx context.Context, cfg *config.Config, log logger.Logger, src source.ByteSource) (dataset.Loader, func(), error) {
	noop := func() {}
	if cfg.RedisURL == "" {
		return source.NewBytesLoader(src), noop, nil
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn(ctx, "redis unavailable; dataset cache disabled", logger.Error(err))
		return source.NewBytesLoader(src), noop, nil
	}
	cached := source.NewCached(src, rc, cfg.CacheTTL(), source.WithCacheLogger(log.Named("cache")))
	log.Info(ctx, "dataset cache enabled", logger.Duration("ttl", cfg.CacheTTL()))
	return source.NewBytesLoader(cached), func() { _ = rc.Close() }, nil
}

// newService wires the resolver, snapshot store, syncer and scorer from
// cfg. cfg must already be validated.
func newService(cfg *config.Config, loader dataset.Loader, log logger.Logger) (*app.Service, error) {
	resolver, err := sport.NewResolver(cfg.Datasets)
	if err != nil {
		return nil, err
	}
	policy, err := matcher.ParsePolicy(cfg.AmbiguityPolicy)
	if err != nil {
		return nil, err
	}
	tie, err := scoring.ParseTiePolicy(cfg.TiePolicy)
	if err != nil {
		return nil, err
	}

	store := repository.NewSnapshotStore()
	syncer := app.NewSyncer(loader, store, resolver,
		app.WithSyncInterval(cfg.SyncInterval()),
		app.WithSyncWorkers(cfg.SyncWorkers),
		app.WithSyncLogger(log.Named("sync")),
	)
	return app.New(
		app.WithLogger(log),
		app.WithResolver(resolver),
		app.WithStore(store),
		app.WithSyncer(syncer),
		app.WithScorer(scoring.NewScorer(
			scoring.WithTiePolicy(tie),
			scoring.WithMaxConfidence(cfg.MaxConfidence),
		)),
		app.WithAmbiguityPolicy(policy),
		app.WithTeamSeparator(cfg.TeamSeparator),
	), nil
}

// newHandler registers the docs and business routes on one router.
func newHandler(ctx context.Context, svc *app.Service, log logger.Logger) http.Handler {
	r := mux.NewRouter()
	swagger.Register(ctx, r)
	api.NewServer(svc, svc,
		api.WithNarrator(narrative.New()),
		api.WithLogger(log.Named("api")),
	).Register(ctx, r)
	return api.Instrument(r, log.Named("http"))
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.CollectSystem()
		}
	}
}
