package metrics

import (
	"time"

	"veristone-hq/clarion/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics related to API request processing.
//
// Metrics:
//   - clarion_requests_total: Total request count by endpoint and status
//   - clarion_request_duration_seconds: Request duration histogram by endpoint
//   - clarion_payload_bytes: Accepted artifact payload sizes by source
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Artifact payload size in bytes
	payloadBytes *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests processed",
			},
			[]string{"endpoint", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"endpoint"},
		),

		payloadBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "payload_bytes",
				Help:      "Size of accepted artifact payloads in bytes",
				Buckets:   cfg.PayloadSizeBuckets,
			},
			[]string{"source"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.payloadBytes,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
//
// Parameters:
//   - endpoint: API endpoint name (e.g., "analyze", "reports")
//   - status: Request status ("success", "error", "rejected")
//   - duration: Request duration
func (rm *RequestMetrics) RecordRequest(endpoint, status string, duration time.Duration) {
	// Increment request counter
	rm.requestsTotal.WithLabelValues(endpoint, status).Inc()

	// Record duration
	rm.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordPayload records the size of an accepted artifact payload.
//
// Parameters:
//   - source: Where the payload came from ("inline", "url", "raw", "file")
//   - sizeBytes: Decoded payload size in bytes
func (rm *RequestMetrics) RecordPayload(source string, sizeBytes int) {
	if sizeBytes > 0 {
		rm.payloadBytes.WithLabelValues(source).Observe(float64(sizeBytes))
	}
}
