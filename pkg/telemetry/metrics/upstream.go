package metrics

import (
	"time"

	"veristone-hq/clarion/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks metrics related to upstream classifier health and
// performance.
//
// Metrics:
//   - clarion_upstream_health: Upstream health status (1=healthy, 0=unhealthy)
//   - clarion_upstream_latency_seconds: Upstream call latency
//   - clarion_upstream_calls_total: Total upstream calls by outcome
type UpstreamMetrics struct {
	// Upstream health status (gauge: 1=healthy, 0=unhealthy)
	health *prometheus.GaugeVec

	// Upstream call latency histogram
	latency *prometheus.HistogramVec

	// Upstream call counter
	calls *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_health",
				Help:      "Upstream classifier health status (1=healthy, 0=unhealthy)",
			},
			[]string{"upstream"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream classifier call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets, // Reuse request duration buckets
			},
			[]string{"upstream"},
		),

		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_calls_total",
				Help:      "Total number of upstream classifier calls by outcome",
			},
			[]string{"upstream", "outcome"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		um.health,
		um.latency,
		um.calls,
	)

	return um
}

// UpdateHealth updates the health status of an upstream classifier.
//
// Parameters:
//   - upstream: Upstream name from configuration
//   - healthy: true if the upstream is healthy, false otherwise
//
// The health metric is a gauge where 1=healthy, 0=unhealthy.
func (um *UpstreamMetrics) UpdateHealth(upstream string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	um.health.WithLabelValues(upstream).Set(value)
}

// RecordCall records one upstream classifier call.
//
// Parameters:
//   - upstream: Upstream name
//   - outcome: Call outcome
//   - latency: Call latency
//
// Common outcomes:
//   - "ok": Call succeeded and the response parsed
//   - "timeout": Per-call timeout elapsed
//   - "auth": Authentication/authorization failure (401/403)
//   - "rate_limited": Upstream rate limit (429)
//   - "malformed": Response did not contain a usable verdict
//   - "error": Any other failure
func (um *UpstreamMetrics) RecordCall(upstream, outcome string, latency time.Duration) {
	um.calls.WithLabelValues(upstream, outcome).Inc()
	um.latency.WithLabelValues(upstream).Observe(latency.Seconds())
}
