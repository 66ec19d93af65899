package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/calbridge/internal/calendar"
	"github.com/teemow/calbridge/internal/google"
	"github.com/teemow/calbridge/internal/instrumentation"
	"github.com/teemow/calbridge/internal/store"
)

const (
	// DefaultReadHeaderTimeout bounds how long a client may take to send
	// request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds the full response write, including the
	// upstream Google call behind it.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is how long keep-alive connections are held open.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful server shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// OAuthFlow is the part of the Google OAuth flow the handlers use.
type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (google.Profile, error)
}

// EventService executes calendar operations for a stored user.
type EventService interface {
	CreateEvent(ctx context.Context, userID string, in calendar.EventInput) (*calendar.CreateResult, error)
	ListEvents(ctx context.Context, userID string) ([]*calendar.EventSummary, error)
}

// UserUpserter persists the credentials obtained from a completed
// authorization.
type UserUpserter interface {
	Upsert(ctx context.Context, in store.UpsertInput) (*store.User, error)
}

// Config holds the settings the HTTP server needs.
type Config struct {
	// Addr is the address the API listens on (e.g. ":5000").
	Addr string

	// FrontendURL is the base URL the OAuth callback redirects back to.
	FrontendURL string
}

// Server is the public HTTP API.
type Server struct {
	cfg        Config
	flow       OAuthFlow
	events     EventService
	users      UserUpserter
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
	health     *HealthChecker
	httpServer *http.Server
}

// New assembles the API server. flow may be nil when OAuth settings are
// missing; the auth endpoints then answer with a configuration error.
func New(cfg Config, flow OAuthFlow, events EventService, users UserUpserter, logger *slog.Logger, metrics *instrumentation.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Server{
		cfg:     cfg,
		flow:    flow,
		events:  events,
		users:   users,
		logger:  logger,
		metrics: metrics,
		health:  NewHealthChecker(),
	}
}

// Health exposes the readiness toggle for lifecycle wiring.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler builds the route table wrapped with the CORS and request
// metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/google", s.handleGoogleRedirect)
	mux.HandleFunc("GET /api/auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("POST /api/calendar/event", s.handleCreateEvent)
	mux.HandleFunc("GET /api/calendar/events", s.handleListEvents)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	s.health.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	handler = s.withRequestMetrics(handler)
	handler = s.withCORS(handler)
	return handler
}

// Start runs the server until it is shut down. Blocking; run in a
// goroutine for non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting api server", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting new work and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		s.logger.Info("shutting down api server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Calendar Integration API is running"))
}
