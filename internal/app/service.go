// Package service provides the prediction service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/puddin/internal/adapters/repository"
	"github.com/okian/puddin/internal/adapters/source"
	"github.com/okian/puddin/internal/domain/matcher"
	"github.com/okian/puddin/internal/domain/model"
	"github.com/okian/puddin/internal/domain/scoring"
	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/internal/domain/types"
	"github.com/okian/puddin/pkg/logger"
	"github.com/okian/puddin/pkg/metrics"
)

// Request is a prediction request as received from a client. Either
// TeamA and TeamB or Teams is set.
type Request struct {
	Sport string
	TeamA string
	TeamB string
	Teams string
}

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	resolver  *sport.Resolver
	store     repository.Store
	syncer    *Syncer
	readiness *Readiness
	scorer    *scoring.Scorer

	// Configuration
	policy    matcher.Policy
	separator string

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResolver sets the sport resolver.
func WithResolver(r *sport.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithStore sets the snapshot store predictions read from.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSyncer sets the dataset syncer whose readiness gates predictions.
func WithSyncer(syncer *Syncer) Option {
	return func(s *Service) {
		if syncer != nil {
			s.syncer = syncer
		}
	}
}

// WithScorer sets the scorer.
func WithScorer(scorer *scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithAmbiguityPolicy sets how a fragment matching several teams is handled.
func WithAmbiguityPolicy(p matcher.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithTeamSeparator sets the separator of the combined teams string.
func WithTeamSeparator(sep string) Option {
	return func(s *Service) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:    scoring.NewScorer(),
		policy:    matcher.FirstMatch,
		separator: DefaultTeamSeparator,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		// nil overrides cannot fail
		s.resolver, _ = sport.NewResolver(nil)
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	if s.syncer != nil {
		s.readiness = s.syncer.Readiness()
	} else {
		s.readiness = NewReadiness()
	}
	return s
}

// Start launches the initial dataset sync and, when configured, the
// periodic refresh. It returns without waiting for the first sync;
// Readiness reports progress.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.syncer == nil {
		return types.E("service.start", types.KindDatasetUnavailable, fmt.Errorf("no dataset syncer configured"))
	}

	s.logger.Info(ctx, "starting prediction service...")
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go func() {
		defer close(done)
		s.syncer.Run(runCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("sports", len(s.resolver.Supported())),
		logger.String("ambiguityPolicy", string(s.policy)),
		logger.String("tiePolicy", string(s.scorer.TiePolicy())),
		logger.Duration("syncInterval", s.syncer.Interval()),
	)
	return nil
}

// Stop cancels background syncing and waits for it to finish. The wait
// happens outside the lock so GetStats keeps answering during a slow fetch.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping prediction service...")
	cancel()
	<-done
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict compares two teams of one sport. Malformed team input and
// unsupported sports are rejected before any dataset is read.
func (s *Service) Predict(ctx context.Context, req Request) (model.Outcome, error) {
	const op = "service.predict"
	start := time.Now()

	out, err := s.predict(ctx, req)
	if err != nil {
		kind := types.KindOf(err)
		if kind == types.KindUnknown {
			kind = "internal_error"
		}
		metrics.RecordPrediction(sportLabel(req.Sport, s.resolver), string(kind))
		metrics.RecordErrorLatency("service", string(kind), float64(time.Since(start).Milliseconds()))
		if kind == "internal_error" {
			return model.Outcome{}, fmt.Errorf("%s: %w", op, err)
		}
		return model.Outcome{}, err
	}

	label := "pick"
	if out.Tie {
		label = "tie"
	}
	metrics.RecordPrediction(out.Sport, label)
	metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

func (s *Service) predict(ctx context.Context, req Request) (model.Outcome, error) {
	const op = "service.predict"

	teamA, teamB, err := ParseTeams(req.TeamA, req.TeamB, req.Teams, s.separator)
	if err != nil {
		return model.Outcome{}, err
	}
	def, err := s.resolver.Resolve(req.Sport)
	if err != nil {
		return model.Outcome{}, err
	}
	tag := string(def.Tag)

	if !s.readiness.Ready() {
		return model.Outcome{}, types.E(op, types.KindDatasetUnavailable,
			fmt.Errorf("datasets are not ready (state %s)", s.readiness.State()))
	}
	ds, err := s.store.Get(ctx, tag)
	if err != nil {
		return model.Outcome{}, types.E(op, types.KindDatasetUnavailable, err)
	}

	resA, matchA, err := matcher.Lookup(ds, def.TeamColumn, teamA, def.Fields, s.policy)
	metrics.RecordMatch(tag, matchA.Status.String())
	if err != nil {
		return model.Outcome{}, err
	}
	resB, matchB, err := matcher.Lookup(ds, def.TeamColumn, teamB, def.Fields, s.policy)
	metrics.RecordMatch(tag, matchB.Status.String())
	if err != nil {
		return model.Outcome{}, err
	}
	if resA.Row == resB.Row {
		return model.Outcome{}, types.E(op, types.KindInvalidInput,
			fmt.Errorf("%q and %q both match %s", teamA, teamB, resA.Team))
	}

	v := s.scorer.Compare(resA, resB)
	out := model.Outcome{
		Sport:      tag,
		Dataset:    ds.Name,
		Game:       resA.Team + s.separator + resB.Team,
		TeamA:      model.TeamSummary{Query: teamA, Result: resA, Aggregate: v.AggregateA},
		TeamB:      model.TeamSummary{Query: teamB, Result: resB, Aggregate: v.AggregateB},
		Pick:       v.Pick,
		Confidence: v.Confidence,
		Tie:        v.Tie,
	}
	switch v.Pick {
	case model.SideA:
		out.PickTeam = resA.Team
	case model.SideB:
		out.PickTeam = resB.Team
	}

	if s.logger != nil {
		s.logger.Debug(ctx, "prediction",
			logger.String("sport", tag),
			logger.String("teamA", resA.Team),
			logger.String("teamB", resB.Team),
			logger.String("pick", out.PickTeam),
			logger.Float64("confidence", out.Confidence),
		)
	}
	return out, nil
}

// sportLabel keeps metric cardinality bounded to known sports.
func sportLabel(tag string, r *sport.Resolver) string {
	if def, err := r.Resolve(tag); err == nil {
		return string(def.Tag)
	}
	return "unknown"
}

// Sports lists the supported sports with their datasets and fields.
func (s *Service) Sports() []sport.Definition {
	return s.resolver.Supported()
}

// Readiness reports the dataset readiness state.
func (s *Service) Readiness() ReadinessStatus {
	return s.readiness.Status()
}

// Refresh resyncs every dataset from its origin, bypassing caches. A
// failed refresh leaves the current snapshot in place.
func (s *Service) Refresh(ctx context.Context) (ReadinessStatus, error) {
	const op = "service.refresh"
	if s.syncer == nil {
		return s.readiness.Status(), types.E(op, types.KindDatasetUnavailable, fmt.Errorf("no dataset syncer configured"))
	}
	if err := s.syncer.Sync(source.BypassCache(ctx)); err != nil {
		return s.readiness.Status(), types.E(op, types.KindDatasetUnavailable, err)
	}
	return s.readiness.Status(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	status := s.readiness.Status()
	stats := map[string]interface{}{
		"started":         s.started,
		"state":           status.State.String(),
		"snapshotVersion": status.Version,
		"datasets":        s.store.Count(ctx),
		"ambiguityPolicy": string(s.policy),
		"tiePolicy":       string(s.scorer.TiePolicy()),
		"maxConfidence":   s.scorer.MaxConfidence(),
		"teamSeparator":   s.separator,
	}

	rows := make(map[string]int)
	for _, def := range s.resolver.Supported() {
		if ds, err := s.store.Get(ctx, string(def.Tag)); err == nil {
			rows[string(def.Tag)] = ds.Len()
		}
	}
	stats["rows"] = rows

	metrics.CollectSystem()
	return stats
}
