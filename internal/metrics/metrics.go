// Package metrics exposes prometheus counters for gateway operation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total chat completion requests by route and outcome",
		},
		[]string{"route", "status"}, // route: "echo"/"backend", status: "success"/"fallback"/"error"
	)

	fallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_fallback_total",
			Help: "Backend failures absorbed by echo fallback, by condition",
		},
		[]string{"condition"},
	)

	backendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_backend_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"status"},
	)
)

// RecordRequest counts one completed request
func RecordRequest(route, status string) {
	requestsTotal.WithLabelValues(route, status).Inc()
}

// RecordFallback counts one backend failure absorbed by echo fallback
func RecordFallback(condition string) {
	fallbackTotal.WithLabelValues(condition).Inc()
}

// RecordBackendRequest records a backend call duration
func RecordBackendRequest(duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	backendDuration.WithLabelValues(status).Observe(duration.Seconds())
}
