// Package server provides the HTTP front of the clarion analysis pipeline.
//
// This package ties together the API handlers, middleware, and health
// probes and provides server lifecycle management including start,
// shutdown, and OS signal handling.
//
// # Architecture
//
// The server package is the top-level HTTP orchestrator that:
//   - Sets up routes and handlers over the analysis pipeline
//   - Chains middleware for cross-cutting concerns
//   - Gates the analyze endpoints behind API key auth and quotas
//   - Configures TLS termination
//   - Manages graceful shutdown
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//
//	pipe, err := pipeline.New(cfg, classifiers, emitter, archive)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipe.Close()
//
//	srv := server.NewServer(cfg, pipe).
//	    WithStorage(archive).
//	    WithTelemetry(collector)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//   - POST /v1/analyze - Analyze an inline or remote artifact
//   - POST /v1/analyze/raw - Analyze a raw byte body
//   - GET /v1/reports - Filtered archive listing
//   - GET /v1/reports/{id} - Single archived report
//   - GET /v1/upstreams/health - Per-upstream classifier detail
//   - GET /v1/diagnostics/logs - Recent log lines (when attached)
//   - GET /healthz - Liveness probe (always 200)
//   - GET /readyz - Readiness probe (archive and upstream checks)
//   - GET /version - Build information
//   - GET /metrics - Prometheus scrape endpoint (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Timeout: Enforces the per-request deadline
//  2. CORS: Adds Cross-Origin Resource Sharing headers
//  3. RequestID: Generates a unique request ID for tracing
//  4. Logging: Logs request/response details
//  5. Recovery: Recovers from panics and returns a 500 error
//
// The analyze endpoints additionally pass the API key and quota gates,
// auth first so quota usage lands on the authenticated key name.
//
// # Graceful Shutdown
//
// The server shuts down on SIGTERM/SIGINT, context cancellation, or an
// explicit Shutdown call: it stops accepting connections, waits up to the
// configured shutdown timeout for in-flight requests, then forces the
// remainder closed. Shutdown is idempotent.
//
// # TLS Support
//
//	server:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//	    min_version: "1.3"
//
// TLS 1.3 is the default minimum; "1.2" can be configured for older
// clients.
package server
