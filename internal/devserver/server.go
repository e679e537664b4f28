package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/vybe/internal/config"
	"github.com/pscheid92/vybe/internal/metrics"
)

const (
	authRatePerSecond = 5
	authBurst         = 10
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	clock    clockwork.Clock
	registry *prometheus.Registry

	users  *UserStore
	tokens *TokenIssuer

	authRate     float64
	authBurst    int
	healthChecks []HealthCheck
	startTime    time.Time
}

type Option func(*Server)

// WithClock sets the clock used for token issuance and validation.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithRegistry serves and records metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithAuthRateLimit overrides the per-IP limit on the auth routes.
func WithAuthRateLimit(ratePerSecond float64, burst int) Option {
	return func(s *Server) {
		s.authRate = ratePerSecond
		s.authBurst = burst
	}
}

// WithHealthChecks adds readiness checks.
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) { s.healthChecks = append(s.healthChecks, checks...) }
}

func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if err := config.ValidateServer(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:      e,
		config:    cfg,
		clock:     clockwork.NewRealClock(),
		authRate:  authRatePerSecond,
		authBurst: authBurst,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.registry == nil {
		srv.registry = metrics.NewRegistry()
	}

	srv.startTime = srv.clock.Now()
	srv.users = NewUserStore()
	srv.tokens = NewTokenIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, srv.clock)
	srv.healthChecks = append([]HealthCheck{{Name: "token_signing", Check: srv.tokens.SelfCheck}}, srv.healthChecks...)

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting dev server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
