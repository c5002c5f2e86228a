package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-signal/pkg/auth"
	"github.com/dd0wney/cluso-signal/pkg/config"
	"github.com/dd0wney/cluso-signal/pkg/graphql"
	"github.com/dd0wney/cluso-signal/pkg/health"
	"github.com/dd0wney/cluso-signal/pkg/history"
	"github.com/dd0wney/cluso-signal/pkg/logging"
	"github.com/dd0wney/cluso-signal/pkg/metrics"
	"github.com/dd0wney/cluso-signal/pkg/pubsub"
	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// TimingsTopic is the in-process pubsub topic timing results fan out on.
const TimingsTopic = "timings"

// TimingPublisher pushes a timing result to downstream subscribers.
type TimingPublisher interface {
	Publish(timing *signal.IntersectionTiming) error
}

// TimingStore persists timing results and serves recent history.
type TimingStore interface {
	Insert(ctx context.Context, requestID string, timing *signal.IntersectionTiming) error
	Recent(ctx context.Context, limit int) ([]history.Record, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP surface around the timing core. The core itself is
// stateless; the server only carries configuration and integration sinks.
type Server struct {
	cfgMu sync.RWMutex
	cfg   config.Config

	registry      *metrics.Registry
	healthChecker *health.Checker
	events        *pubsub.PubSub
	publisher     TimingPublisher
	store         TimingStore
	jwtManager    *auth.JWTManager
	apiKeys       *auth.APIKeyStore

	graphqlHandler *graphql.GraphQLHandler
	log            logging.Logger
	startTime      time.Time
	version        string
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithPublisher attaches the downstream broadcast publisher.
func WithPublisher(p TimingPublisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithStore attaches the timing history store.
func WithStore(st TimingStore) Option {
	return func(s *Server) { s.store = st }
}

// WithRegistry overrides the metrics registry (tests).
func WithRegistry(r *metrics.Registry) Option {
	return func(s *Server) { s.registry = r }
}

// NewServer creates the API server from validated configuration.
func NewServer(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:           cfg,
		registry:      metrics.Default(),
		healthChecker: health.NewChecker(),
		events:        pubsub.New(),
		log:           logging.With(logging.Component("api")),
		startTime:     time.Now(),
		version:       Version,
	}

	if cfg.Auth.JWTSecret != "" {
		manager, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
		if err != nil {
			return nil, err
		}
		s.jwtManager = manager
	}
	if len(cfg.Auth.APIKeys) > 0 {
		s.apiKeys = auth.NewAPIKeyStore(cfg.Auth.APIKeys)
	}

	for _, opt := range opts {
		opt(s)
	}

	schema, err := graphql.GenerateSchema(func(lanes []signal.LaneCount) (*signal.IntersectionTiming, error) {
		return s.optimize(lanes, "graphql")
	})
	if err != nil {
		return nil, err
	}
	s.graphqlHandler = graphql.NewGraphQLHandler(schema)

	s.registerHealthChecks()
	return s, nil
}

// Routes builds the HTTP handler with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz/live", s.handleLiveness)
	mux.HandleFunc("/healthz/ready", s.handleReadiness)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.registry.PrometheusRegistry(), promhttp.HandlerOpts{}))

	// Core operation
	mux.HandleFunc("/v1/optimize", s.handleOptimize)
	mux.HandleFunc("/v1/config", s.handleConfig)
	mux.HandleFunc("/v1/timings/recent", s.handleRecent)
	mux.HandleFunc("/v1/timings/stream", s.handleStream)

	// GraphQL mirror of the optimize operation
	mux.Handle("/graphql", s.graphqlHandler)

	return s.requestIDMiddleware(s.metricsMiddleware(s.authMiddleware(mux)))
}

// Config returns a snapshot of the current configuration.
func (s *Server) Config() config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// ReloadConfig swaps in a new validated configuration. Used by the
// SIGHUP handler; in-flight requests keep the snapshot they started with.
func (s *Server) ReloadConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	s.log.Info("configuration reloaded")
	return nil
}

// Events exposes the in-process pubsub (tests, embedding).
func (s *Server) Events() *pubsub.PubSub {
	return s.events
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown() {
	s.events.Shutdown()
}

func (s *Server) registerHealthChecks() {
	s.healthChecker.RegisterLivenessCheck("server", func() health.Check {
		return health.Healthy("serving")
	})

	s.healthChecker.RegisterCheck("config", func() health.Check {
		if err := s.Config().Validate(); err != nil {
			return health.Unhealthy(err.Error())
		}
		return health.Healthy("valid")
	})

	if s.store != nil {
		check := func() health.Check {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.store.Ping(ctx); err != nil {
				return health.Degraded("history store unreachable: " + err.Error())
			}
			return health.Healthy("connected")
		}
		s.healthChecker.RegisterCheck("history", check)
		s.healthChecker.RegisterReadinessCheck("history", check)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}
