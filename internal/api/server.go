// Package api exposes history analyses over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/star/tlehist/internal/auth"
	"github.com/star/tlehist/internal/health"
	"github.com/star/tlehist/internal/history"
	"github.com/star/tlehist/internal/httputil"
	"github.com/star/tlehist/internal/metrics"
)

// Analyzer runs one history analysis. *history.Engine implements it.
type Analyzer interface {
	Analyze(ctx context.Context, from, to string) (*history.Report, error)
}

// Options configures a Server.
type Options struct {
	Addr               string
	TrustProxy         bool
	MaxConcurrentPerIP int
	MaxConcurrent      int           // across all clients; defaults to 64
	RequestTimeout     time.Duration // per analysis; 0 means none
	Auth               auth.Config
	Ready              func() error
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	opts       Options
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(opts Options, analyzer Analyzer, logger *slog.Logger) *Server {
	if opts.MaxConcurrentPerIP <= 0 {
		opts.MaxConcurrentPerIP = 2
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 64
	}

	s := &Server{
		analyzer: analyzer,
		opts:     opts,
		logger:   logger,
	}
	limiter := newAnalysisLimiter(opts.MaxConcurrentPerIP, opts.MaxConcurrent, opts.TrustProxy, logger)

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Register routes.
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz(opts.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.middleware)
		r.Get("/history", s.handleHistory)
		r.Get("/summary", s.handleSummary)
		r.Get("/satellites/{norad_id}", s.handleSatellite)
	})

	// Build middleware chain: metrics -> logging -> auth -> router.
	var handler http.Handler = r
	handler = auth.Middleware(opts.Auth)(handler)
	handler = loggingMiddleware(logger, opts.TrustProxy)(handler)
	handler = metrics.Middleware(handler)

	writeTimeout := 30 * time.Second
	if opts.RequestTimeout > 0 {
		writeTimeout = opts.RequestTimeout + 10*time.Second
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
