package metrics

import (
	"fmt"
	"sync"
	"time"

	"veristone-hq/clarion/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in clarion.
// It manages metric registration, collection, and provides a unified interface
// for recording metrics across all components.
//
// The collector is designed for minimal overhead on the analysis path:
//   - Pre-allocated metric instances
//   - Cardinality limits on caller-supplied labels
//   - Histogram buckets sized for audio payloads and upstream latencies
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Upstream classifier metrics
	upstreamMetrics *UpstreamMetrics

	// Report metrics
	reportMetrics *ReportMetrics

	// Quota metrics
	quotaMetrics *QuotaMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "clarion",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "clarion"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Covers local heuristics (ms) through slow upstream calls (seconds)
		cfg.RequestDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	}
	if len(cfg.PayloadSizeBuckets) == 0 {
		// 1KB to 32MB
		cfg.PayloadSizeBuckets = prometheus.ExponentialBuckets(1024, 2, 16)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000), // Max 10K unique label sets
	}

	// Initialize metric subsystems
	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.reportMetrics = NewReportMetrics(cfg, registry)
	c.quotaMetrics = NewQuotaMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed API request.
//
// Parameters:
//   - endpoint: API endpoint name (e.g., "analyze", "analyze_raw", "reports")
//   - status: Request status ("success", "error", "rejected")
//   - duration: Total request duration
//
// Example:
//
//	collector.RecordRequest("analyze", "success", 850*time.Millisecond)
func (c *Collector) RecordRequest(endpoint, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordRequest(endpoint, status, duration)
}

// RecordPayload records the size of an accepted artifact payload.
//
// Parameters:
//   - source: Where the artifact bytes came from ("inline", "url", "raw", "file")
//   - sizeBytes: Decoded payload size in bytes
func (c *Collector) RecordPayload(source string, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordPayload(source, sizeBytes)
}

// RecordUpstreamCall records one call to an upstream classifier.
//
// Parameters:
//   - upstream: Upstream name from configuration (e.g., "guard", "transcriber")
//   - outcome: Call outcome ("ok", "error", "timeout", "auth", "rate_limited", "malformed")
//   - latency: Call latency
//
// Example:
//
//	collector.RecordUpstreamCall("guard", "ok", 320*time.Millisecond)
func (c *Collector) RecordUpstreamCall(upstream, outcome string, latency time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.RecordCall(upstream, outcome, latency)
}

// UpdateUpstreamHealth updates the health status of an upstream classifier.
//
// The health metric is a gauge where 1=healthy, 0=unhealthy.
func (c *Collector) UpdateUpstreamHealth(upstream string, healthy bool) {
	if !c.config.Enabled {
		return
	}

	c.upstreamMetrics.UpdateHealth(upstream, healthy)
}

// RecordCompositeScore records the composite trust score of a completed
// analysis. Scores land in [0,1].
func (c *Collector) RecordCompositeScore(score float64) {
	if !c.config.Enabled {
		return
	}

	c.reportMetrics.RecordScore(score)
}

// RecordReportEmitted records a report delivery attempt to a sink.
//
// Parameters:
//   - sink: Sink name ("webhook", "file", "stdout")
//   - outcome: Delivery outcome ("ok", "error")
func (c *Collector) RecordReportEmitted(sink, outcome string) {
	if !c.config.Enabled {
		return
	}

	c.reportMetrics.RecordEmitted(sink, outcome)
}

// RecordReportDropped records a report dropped because the emitter queue
// was full.
func (c *Collector) RecordReportDropped() {
	if !c.config.Enabled {
		return
	}

	c.reportMetrics.RecordDropped()
}

// RecordQuotaRejection records a request rejected by quota enforcement.
//
// Parameters:
//   - key: API key name (never the secret itself)
func (c *Collector) RecordQuotaRejection(key string) {
	if !c.config.Enabled {
		return
	}

	// Check cardinality limit
	labelSet := fmt.Sprintf("quota:%s", key)
	if !c.cardinalityLimiter.Allow(labelSet) {
		// Aggregate into "other" to prevent cardinality explosion
		key = "other"
	}

	c.quotaMetrics.RecordRejection(key)
}

// UpdateQuotaUsage updates the tracked usage for an API key within a window.
//
// Parameters:
//   - key: API key name
//   - window: Quota window ("daily", "monthly")
//   - resource: Tracked resource ("requests", "bytes")
//   - used: Current usage within the window
func (c *Collector) UpdateQuotaUsage(key, window, resource string, used float64) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("quota:%s", key)
	if !c.cardinalityLimiter.Allow(labelSet) {
		key = "other"
	}

	c.quotaMetrics.UpdateUsage(key, window, resource, used)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
