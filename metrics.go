package ramik

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newClientMetrics() *clientMetrics {
	return &clientMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ramik",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Backend requests issued, by method, canonical path and status.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ramik",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Backend request latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *clientMetrics) observe(method, path, status string, d time.Duration) {
	p := CanonicalPath(path)
	m.requests.WithLabelValues(method, p, status).Inc()
	m.duration.WithLabelValues(method, p).Observe(d.Seconds())
}

// Collectors returns the client's Prometheus collectors for registration.
func (c *Client) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.metrics.requests, c.metrics.duration}
}

// CanonicalPath strips the query string and replaces numeric path segments
// with ":id" so metric label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if part != "" && isDigits(part) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
