// Package metrics provides Prometheus metrics collection for clarion.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring artifact
// analysis, upstream classifier health, report delivery, and quota
// enforcement. Metric collection is cheap enough to sit on the analysis path.
//
// # Metrics Categories
//
//   - Request Metrics: Request count, duration, and payload sizes
//   - Upstream Metrics: Upstream health, latency, and call outcomes
//   - Report Metrics: Composite score distribution and sink deliveries
//   - Quota Metrics: Quota rejections and per-key usage
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Record request metrics
//	collector.RecordRequest("analyze", "success", 850*time.Millisecond)
//	collector.RecordPayload("inline", 2048576)
//
//	// Record upstream metrics
//	collector.RecordUpstreamCall("guard", "ok", 320*time.Millisecond)
//	collector.UpdateUpstreamHealth("guard", true)
//
//	// Record report metrics
//	collector.RecordCompositeScore(0.83)
//	collector.RecordReportEmitted("webhook", "ok")
//
// # Custom Histogram Buckets
//
// The collector defaults to buckets sized for this workload:
//
//	Request Duration: 10ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s, 30s
//	Payload Sizes: exponential, 1KB to 32MB
//	Composite Score: linear, 0.0 to 1.0 in 0.1 steps
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP clarion_requests_total Total number of API requests processed
//	# TYPE clarion_requests_total counter
//	clarion_requests_total{endpoint="analyze",status="success"} 1234
//
// # Cardinality Management
//
// The collector implements cardinality limits to prevent memory issues:
//
//   - Maximum 10,000 unique label combinations per metric
//   - Overflow quota keys aggregated into "other"
package metrics
