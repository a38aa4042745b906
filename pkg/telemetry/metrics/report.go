package metrics

import (
	"veristone-hq/clarion/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics tracks composite scores and report delivery.
//
// Metrics:
//   - clarion_composite_score: Distribution of composite trust scores
//   - clarion_reports_emitted_total: Report deliveries by sink and outcome
//   - clarion_reports_dropped_total: Reports dropped by a full emitter queue
type ReportMetrics struct {
	// Composite score distribution
	compositeScore prometheus.Histogram

	// Report delivery counter
	emittedTotal *prometheus.CounterVec

	// Dropped report counter
	droppedTotal prometheus.Counter
}

// NewReportMetrics creates and registers report metrics with the provided registry.
func NewReportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReportMetrics {
	rm := &ReportMetrics{
		compositeScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "composite_score",
				Help:      "Distribution of composite trust scores",
				// Scores land in [0,1]
				Buckets: prometheus.LinearBuckets(0.0, 0.1, 11),
			},
		),

		emittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "reports_emitted_total",
				Help:      "Total number of report delivery attempts by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "reports_dropped_total",
				Help:      "Total number of reports dropped because the emitter queue was full",
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.compositeScore,
		rm.emittedTotal,
		rm.droppedTotal,
	)

	return rm
}

// RecordScore records the composite trust score of a completed analysis.
func (rm *ReportMetrics) RecordScore(score float64) {
	rm.compositeScore.Observe(score)
}

// RecordEmitted records a report delivery attempt.
//
// Parameters:
//   - sink: Sink name ("webhook", "file", "stdout")
//   - outcome: Delivery outcome ("ok", "error")
func (rm *ReportMetrics) RecordEmitted(sink, outcome string) {
	rm.emittedTotal.WithLabelValues(sink, outcome).Inc()
}

// RecordDropped records a report dropped before delivery.
func (rm *ReportMetrics) RecordDropped() {
	rm.droppedTotal.Inc()
}
