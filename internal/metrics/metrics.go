// Package metrics registers the Prometheus collectors for the eclipse
// engine and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eclipse_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eclipse_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	httpRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eclipse_http_rejected_total",
			Help: "Requests turned away before any work was done.",
		},
		[]string{"reason"},
	)

	searchCandidatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eclipse_search_candidates_total",
		Help: "Candidates flagged by the coarse scan.",
	})

	searchConfirmedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eclipse_search_confirmed_total",
		Help: "Candidates confirmed as visible eclipses.",
	})

	searchDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eclipse_search_dropped_total",
		Help: "Candidates dropped after an exhausted refinement window.",
	})

	searchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eclipse_search_duration_seconds",
		Help:    "Wall time of a complete eclipse search.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	renderFrameSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eclipse_render_frame_duration_seconds",
		Help:    "Time to shade one occultation frame.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	memoHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eclipse_render_memo_hits_total",
		Help: "Per-frame occultation lookups served from the memo.",
	})

	memoMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eclipse_render_memo_misses_total",
		Help: "Per-frame occultation lookups that had to be computed.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		httpRejectedTotal,
		searchCandidatesTotal,
		searchConfirmedTotal,
		searchDroppedTotal,
		searchDurationSeconds,
		renderFrameSeconds,
		memoHitsTotal,
		memoMissesTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncRejected counts a request refused for reason (e.g. "rate_limit").
func IncRejected(reason string) {
	httpRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSearch records the outcome of one eclipse search.
func RecordSearch(d time.Duration, candidates, confirmed, dropped int) {
	searchDurationSeconds.Observe(d.Seconds())
	searchCandidatesTotal.Add(float64(candidates))
	searchConfirmedTotal.Add(float64(confirmed))
	searchDroppedTotal.Add(float64(dropped))
}

// RecordFrame records the time taken to shade one frame and the memo
// traffic it generated.
func RecordFrame(d time.Duration, hits, misses int64) {
	renderFrameSeconds.Observe(d.Seconds())
	memoHitsTotal.Add(float64(hits))
	memoMissesTotal.Add(float64(misses))
}

// knownRoutes are reported under their own path label.
var knownRoutes = map[string]bool{
	"/":                   true,
	"/healthz":            true,
	"/readyz":             true,
	"/metrics":            true,
	"/api/v1/eclipses":    true,
	"/api/v1/moon":        true,
	"/api/v1/occultation": true,
}

// normalizeRoute maps a request path onto a bounded label set so that
// scanners probing random paths cannot blow up series cardinality.
func normalizeRoute(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := normalizeRoute(r.URL.Path)
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
