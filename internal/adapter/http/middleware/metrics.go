package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/commledger/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics recording.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := normalizePath(r.URL.Path)
		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// idSegments marks path segments whose successor is a request-scoped
// identifier. Collapsing them keeps metric cardinality bounded.
var idSegments = map[string]string{
	"contributions": ":id",
	"entries":       ":id",
	"links":         ":code",
	"users":         ":id",
}

// normalizePath replaces identifiers in URL paths to avoid high cardinality.
// /api/v1/contributions/01ABC/confirm -> /api/v1/contributions/:id/confirm
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i := 0; i < len(segments)-1; i++ {
		if placeholder, ok := idSegments[segments[i]]; ok && segments[i+1] != "" {
			segments[i+1] = placeholder
			i++
		}
	}
	return strings.Join(segments, "/")
}
