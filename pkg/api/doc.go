// Package api defines the HTTP surface of the analysis service: request
// and envelope types, body parsing, and the error-to-status mapping.
//
// # Envelope contract
//
// Every endpoint answers with one of two JSON shapes:
//
//	{"ok": true,  "report": {...}}
//	{"ok": false, "error": "...", "detail": "..."}
//
// The error field carries a stable, caller-facing string; diagnostic detail
// that could leak internals stays in the logs.
//
// # Status mapping
//
//   - InputError (malformed or missing source)  -> 400
//   - PayloadTooLargeError                      -> 413
//   - StorageError on archive queries           -> 500
//   - everything else                           -> 500, generic message
//
// Subpackages:
//
//   - handlers: one http.Handler per endpoint
//   - middleware: timeout, CORS, request ID, logging, recovery, quota
package api
