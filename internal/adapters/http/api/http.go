// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/puddin/internal/app"
	"github.com/okian/puddin/internal/domain/model"
	"github.com/okian/puddin/internal/domain/narrative"
	"github.com/okian/puddin/internal/domain/sport"
	"github.com/okian/puddin/pkg/logger"

	"github.com/gorilla/mux"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, req service.Request) (model.Outcome, error)
	Sports() []sport.Definition
	Readiness() service.ReadinessStatus
	Refresh(ctx context.Context) (service.ReadinessStatus, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler    *RootHandler
	predictHandler *PredictHandler
	sportsHandler  *SportsHandler
	readyHandler   *ReadyHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	narrator *narrative.Narrator
	logger   logger.Logger
}

// WithNarrator sets the narrator used to render prediction lines.
func WithNarrator(n *narrative.Narrator) Option {
	return func(o *serverOptions) {
		if n != nil {
			o.narrator = n
		}
	}
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{narrator: narrative.New()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}
	return &Server{
		rootHandler:    NewRootHandler(),
		predictHandler: NewPredictHandler(deps, o.narrator, o.logger),
		sportsHandler:  NewSportsHandler(deps),
		readyHandler:   NewReadyHandler(deps, o.logger),
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to r. Endpoint labels for metrics are
// the route templates.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(MetricsMiddleware)

	r.HandleFunc("/", s.rootHandler.HandleRoot).Methods(http.MethodGet)
	r.HandleFunc("/predict", s.predictHandler.HandlePredict).Methods(http.MethodPost)
	r.HandleFunc("/sports", s.sportsHandler.HandleSports).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyHandler.HandleReady).Methods(http.MethodGet)
	r.HandleFunc("/datasets/refresh", s.readyHandler.HandleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
