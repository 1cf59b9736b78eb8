// Package api exposes the ephemeris and eclipse search over HTTP/JSON.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/pedrokkrause/fourier-ephem/internal/auth"
	"github.com/pedrokkrause/fourier-ephem/internal/config"
	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/health"
	"github.com/pedrokkrause/fourier-ephem/internal/httputil"
	"github.com/pedrokkrause/fourier-ephem/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deps are the components the handlers serve from.
type Deps struct {
	Model     *ephemeris.Model
	Searcher  *eclipse.Searcher
	Readiness *health.Readiness
	Config    config.Config
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, deps Deps) *Server {
	timeout := time.Duration(deps.Config.API.RequestTimeoutSec) * time.Second

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(logger, deps),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      timeout + 10*time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler builds the routed handler with its middleware chain:
// metrics -> logging -> auth -> mux.
func NewHandler(logger *slog.Logger, deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", deps.Readiness.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	limiter := httputil.NewLimiter(deps.Config.API.SearchesPerClient, deps.Config.API.MaxSearches)
	mux.HandleFunc("GET /api/v1/eclipses", eclipsesHandler(logger, deps, limiter))
	mux.HandleFunc("GET /api/v1/moon", moonHandler(deps))
	mux.HandleFunc("GET /api/v1/occultation", occultationHandler(deps))

	var handler http.Handler = mux
	handler = auth.Middleware(deps.Config.API.AuthToken)(handler)
	handler = loggingMiddleware(logger, deps.Config.API.TrustProxy)(handler)
	handler = metrics.Middleware(handler)
	return handler
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

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
