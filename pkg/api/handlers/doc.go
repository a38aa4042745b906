// Package handlers provides the HTTP request handlers of the analysis
// service.
//
// Each endpoint is one handler type implementing http.Handler:
//
//   - AnalyzeHandler: POST /v1/analyze (base64 blob or remote URL)
//   - RawAnalyzeHandler: POST /v1/analyze/raw (request body is the artifact)
//   - ReportsHandler: GET /v1/reports and GET /v1/reports/{id}
//   - UpstreamHealthHandler: GET /v1/upstreams/health
//
// Handlers follow a consistent pattern:
//
//  1. Reject any method other than the one the route serves
//  2. Parse and validate the request (body ceiling, source checks)
//  3. Materialize the artifact through intake
//  4. Run the pipeline and write the report envelope
//  5. Map failures through the api error taxonomy
//
// Handlers record request metrics when an Observer is attached; endpoint
// and status labels follow the collector's vocabulary. Liveness and
// readiness probes live in pkg/telemetry/health and are wired by the
// server, not here.
package handlers
