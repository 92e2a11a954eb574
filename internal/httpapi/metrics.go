package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"extractd/internal/extract"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "extractd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "extractd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "extractd",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	extractResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "extractd",
			Subsystem: "extract",
			Name:      "results_total",
			Help:      "Extraction results by method",
		},
		[]string{"method"},
	)

	extractFieldsFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "extractd",
			Subsystem: "extract",
			Name:      "fields_found_total",
			Help:      "Fields present in extraction results",
		},
		[]string{"field"},
	)

	extractGenerationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "extractd",
			Subsystem: "extract",
			Name:      "generation_failures_total",
			Help:      "Extractions that fell back to rule-based results after a generation failure",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal, httpRequestDuration, httpInflight,
		extractResultsTotal, extractFieldsFoundTotal, extractGenerationFailuresTotal,
	)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		// the route pattern is only known after chi routed the request
		path := routePatternOrPath(r)
		status := strconv.Itoa(sr.status)
		httpRequestsTotal.WithLabelValues(path, r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, status).Observe(time.Since(start).Seconds())
	})
}

// inflightMiddleware tracks in-flight requests per raw path.
func inflightMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := httpInflight.WithLabelValues(r.URL.Path)
		g.Inc()
		defer g.Dec()
		next.ServeHTTP(w, r)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// RecordExtraction counts one extraction result.
func RecordExtraction(res extract.Result) {
	extractResultsTotal.WithLabelValues(string(res.Method)).Inc()
	if res.TaxID != nil {
		extractFieldsFoundTotal.WithLabelValues("tax_id").Inc()
	}
	if res.FullName != nil {
		extractFieldsFoundTotal.WithLabelValues("full_name").Inc()
	}
	if res.Error != nil {
		extractGenerationFailuresTotal.Inc()
	}
}
