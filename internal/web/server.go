// Package web serves the csvprobe JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/csvprobe/internal/config"
	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/store"
	mw "github.com/JonMunkholm/csvprobe/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP front end for a core.Validator.
type Server struct {
	cfg       *config.Config
	validator *core.Validator
	reports   *store.Reports
	metrics   http.Handler
	limiter   *ValidationLimiter
	rate      *mw.RateLimiter
	logger    *zap.Logger
	router    *chi.Mux
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithReports enables report storage and the /api/reports routes.
func WithReports(r *store.Reports) Option {
	return func(s *Server) { s.reports = r }
}

// WithMetricsHandler serves h at the configured metrics path.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the server's own logger. Request logs use the zap global.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds the router for cfg.
func NewServer(cfg *config.Config, validator *core.Validator, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		validator: validator,
		limiter:   NewValidationLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime),
		logger:    zap.NewNop(),
		router:    chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Server.TrustedProxies, s.logger))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Server.RateLimit > 0 {
		s.rate = mw.NewRateLimiter(s.cfg.Server.RateLimit, time.Minute)
		s.router.Use(s.rate.Handler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, r, errors.New("rate limit exceeded"), http.StatusTooManyRequests)
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/metadata", s.handleMetadata)
		r.Get("/status", s.handleStatus)
		r.Get("/types", s.handleTypes)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.server.Addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight validations
// until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rate != nil {
		s.rate.Close()
	}

	s.logger.Info("server stopping", zap.Int("active_validations", s.limiter.ActiveCount()))
	err := s.server.Shutdown(ctx)
	if derr := s.limiter.Drain(ctx); derr != nil {
		s.logger.Warn("validations did not complete in time",
			zap.Int("active", s.limiter.ActiveCount()),
			zap.Error(derr),
		)
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
