// Package tracing provides OpenTelemetry distributed tracing for Clarion.
//
// # Overview
//
// The tracing package implements W3C Trace Context propagation, span creation,
// and trace export to OTLP collectors. It provides visibility into an analysis
// request as it moves through the pipeline stages with minimal overhead
// (<100µs per span), and adds none at all when disabled.
//
// # Distributed Tracing
//
// Distributed tracing tracks requests as they flow through multiple services,
// creating a hierarchy of spans that represent operations. Each span records:
//   - Operation name and duration
//   - Attributes (key-value pairs)
//   - Events (timestamped logs within the span)
//   - Trace context (trace ID, span ID, sampling decision)
//
// # Trace Context Propagation
//
// The package implements W3C Trace Context (https://www.w3.org/TR/trace-context/)
// for propagating trace context across HTTP boundaries:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//	tracestate: congo=t61rcWkgMzE
//
// # Sampling Strategies
//
// Three sampling strategies are supported:
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces (tracing disabled)
//   - ratio: Sample a percentage of traces (production)
//
// # Usage
//
//	// Initialize tracer
//	cfg := &config.TracingConfig{
//	    Enabled:     true,
//	    Sampler:     "ratio",
//	    SampleRatio: 0.1,
//	    Exporter:    "otlp",
//	    Endpoint:    "localhost:4317",
//	    ServiceName: "clarion",
//	}
//	tracer, err := tracing.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tracer.Shutdown(context.Background())
//
//	// Create span
//	ctx, span := tracer.Start(ctx, "clarion.analyze")
//	defer span.End()
//
//	// Add attributes
//	span.SetAttributes(
//	    attribute.String("clarion.upstream", "guard"),
//	    attribute.String("clarion.artifact.digest", digest),
//	    attribute.Float64("clarion.score.composite", 0.82),
//	)
//
//	// Add event
//	span.AddEvent("upstream_skipped", trace.WithAttributes(
//	    attribute.String("upstream", "tamper"),
//	    attribute.String("reason", "unhealthy"),
//	))
//
// # Span Hierarchy
//
// One analysis request produces a span per pipeline stage:
//
//	clarion.analyze (2.1s)
//	├── clarion.stage.intake (3ms)
//	├── clarion.stage.features (14ms)
//	├── clarion.stage.classify (2s)
//	│   ├── clarion.upstream.transcriber (800ms)
//	│   └── clarion.upstream.guard (1.9s)
//	├── clarion.stage.score (<1ms)
//	└── clarion.stage.assemble (4ms)
//
// # HTTP Integration
//
// Extract trace context from incoming HTTP requests:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "handle_request")
//	defer span.End()
//
// Inject trace context into outgoing HTTP requests (classifier upstreams,
// webhook deliveries):
//
//	req, _ := http.NewRequestWithContext(ctx, "POST", url, body)
//	tracing.Inject(ctx, req.Header)
//
// # Performance
//
// The tracing package is designed for minimal overhead:
//   - Span creation: <100µs per span
//   - Context propagation: <10µs
//   - Sampling decision: <1µs
//   - When disabled: <1µs (noop span)
//
// # Trace Exporters
//
// OTLP over gRPC is the supported exporter:
//
//	telemetry:
//	  tracing:
//	    exporter: otlp
//	    endpoint: localhost:4317
//	    otlp:
//	      insecure: true
//	      timeout: 10s
//
// Jaeger and Zipkin deployments are reached through their OTLP-compatible
// collectors; the native exporters are recognized in configuration but
// currently return an error at startup.
//
// # Attribute Helpers
//
// Common attributes can be set using helper functions:
//
//	// Upstream classifier attributes
//	tracing.SetUpstreamAttributes(span, "guard", "ok")
//
//	// Request attributes
//	tracing.SetRequestAttributes(span, requestID, apiKey, "base64")
//
//	// Artifact attributes
//	tracing.SetArtifactAttributes(span, digest, "audio/wav", sizeBytes)
//
//	// Score attributes
//	tracing.SetScoreAttributes(span, 0.82, "external")
//
//	// Error attributes
//	tracing.SetErrorAttributes(span, err, "upstream_timeout")
package tracing
