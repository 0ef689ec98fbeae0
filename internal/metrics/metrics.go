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
			Name: "tlehist_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tlehist_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	snapshotFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlehist_snapshot_fetches_total",
			Help: "Snapshot fetch attempts by source and result.",
		},
		[]string{"source", "result"},
	)

	snapshotFetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tlehist_snapshot_fetch_duration_seconds",
			Help:    "Snapshot fetch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	recordsParsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tlehist_records_parsed_total",
		Help: "TLE records accepted by the parser.",
	})

	recordsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tlehist_records_dropped_total",
		Help: "TLE records dropped as malformed.",
	})

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tlehist_analyses_total",
			Help: "Completed history analyses by outcome.",
		},
		[]string{"outcome"},
	)

	analysisSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tlehist_analysis_duration_seconds",
		Help:    "History analysis duration in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	satellitesReported = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tlehist_satellites_reported",
		Help: "Satellites with at least one update in the most recent analysis.",
	})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(snapshotFetchesTotal)
	prometheus.MustRegister(snapshotFetchSeconds)
	prometheus.MustRegister(recordsParsedTotal)
	prometheus.MustRegister(recordsDroppedTotal)
	prometheus.MustRegister(analysesTotal)
	prometheus.MustRegister(analysisSeconds)
	prometheus.MustRegister(satellitesReported)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSnapshotFetch records one fetch attempt against a snapshot source.
func ObserveSnapshotFetch(source, result string, d time.Duration) {
	snapshotFetchesTotal.WithLabelValues(source, result).Inc()
	snapshotFetchSeconds.WithLabelValues(source).Observe(d.Seconds())
}

// AddRecords records parser output for one snapshot.
func AddRecords(parsed, dropped int) {
	recordsParsedTotal.Add(float64(parsed))
	recordsDroppedTotal.Add(float64(dropped))
}

// ObserveAnalysis records a finished analysis.
func ObserveAnalysis(d time.Duration, satellites int, partial bool) {
	outcome := "complete"
	if partial {
		outcome = "partial"
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	analysisSeconds.Observe(d.Seconds())
	satellitesReported.Set(float64(satellites))
}

// knownRoutes are recorded with their own path label.
var knownRoutes = map[string]bool{
	"/healthz":            true,
	"/readyz":             true,
	"/metrics":            true,
	"/api/v1/history":     true,
	"/api/v1/summary":     true,
	"/api/v1/satellites/": false,
}

// normalizeRoute maps a request path to a bounded set of metric labels.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if id, ok := strings.CutPrefix(path, "/api/v1/satellites/"); ok && id != "" && !strings.Contains(id, "/") {
		return "/api/v1/satellites/{norad_id}"
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

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}
