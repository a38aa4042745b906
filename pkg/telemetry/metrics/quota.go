package metrics

import (
	"veristone-hq/clarion/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// QuotaMetrics tracks quota enforcement.
//
// Metrics:
//   - clarion_quota_rejections_total: Requests rejected by quota enforcement
//   - clarion_quota_usage: Current usage per key, window, and resource
//
// These metrics only move when quota enforcement is enabled.
type QuotaMetrics struct {
	// Rejection counter
	rejectionsTotal *prometheus.CounterVec

	// Current usage gauge
	usage *prometheus.GaugeVec
}

// NewQuotaMetrics creates and registers quota metrics with the provided registry.
func NewQuotaMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *QuotaMetrics {
	qm := &QuotaMetrics{
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "quota_rejections_total",
				Help:      "Total number of requests rejected by quota enforcement",
			},
			[]string{"key"},
		),

		usage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "quota_usage",
				Help:      "Current quota usage by key, window, and resource",
			},
			[]string{"key", "window", "resource"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		qm.rejectionsTotal,
		qm.usage,
	)

	return qm
}

// RecordRejection records a request rejected by quota enforcement.
//
// Parameters:
//   - key: API key name (never the secret itself)
func (qm *QuotaMetrics) RecordRejection(key string) {
	qm.rejectionsTotal.WithLabelValues(key).Inc()
}

// UpdateUsage updates the tracked usage for a key within a window.
//
// Parameters:
//   - key: API key name
//   - window: Quota window ("daily", "monthly")
//   - resource: Tracked resource ("requests", "bytes")
//   - used: Current usage within the window
func (qm *QuotaMetrics) UpdateUsage(key, window, resource string, used float64) {
	qm.usage.WithLabelValues(key, window, resource).Set(used)
}
