// Package telemetry provides observability for Clarion.
//
// # Components
//
//   - logging: structured slog logging with secret redaction and an
//     in-memory ring buffer behind the diagnostics endpoint
//   - metrics: Prometheus metrics collection
//   - tracing: OpenTelemetry distributed tracing
//   - health: liveness and readiness probes
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	slog.SetDefault(logger.Slog())
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	http.Handle("/metrics", collector.Handler())
//
//	tracer, err := tracing.New(&cfg.Tracing)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctx, span := tracer.Start(ctx, "analysis.run")
//	defer span.End()
//
// # Secret Redaction
//
// The logging package redacts credential-shaped values before they
// reach any output: bearer tokens, api_key fields, and custom patterns
// from the logging configuration. Redaction is on by default and must
// be disabled explicitly.
package telemetry
