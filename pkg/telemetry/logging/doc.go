// Package logging provides structured logging with secret redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Automatic secret redaction (API keys, bearer tokens, credentials)
//   - Context-aware logging with request IDs and artifact digests
//   - A bounded ring of recent lines backing the diagnostics endpoint
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	// Log structured data
//	logger.Info("request processed",
//	    "request_id", "req-123",
//	    "api_key", "sk-abc123",  // Automatically redacted
//	    "duration_ms", 1234,
//	)
//
//	// Create context-aware logger
//	ctx = logging.WithRequestID(ctx, "req-123")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("processing")  // Includes request_id automatically
//
// # Secret Redaction
//
// Secrets are redacted from log fields when RedactSecrets is enabled:
//
//   - API keys: sk-abc123xyz → sk-***
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//   - Values under sensitive keys (api_key, token, authorization) keep
//     only a four-character prefix
//
// # Recent Lines
//
// Every emitted line is retained in a bounded ring (default 1000 lines)
// readable through Logger.Buffer().Recent(n). The ring evicts oldest lines
// first and counts evictions.
package logging
