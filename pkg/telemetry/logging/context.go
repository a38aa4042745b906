package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// APIKeyKey is the context key for API keys.
	APIKeyKey contextKey = "api_key"

	// UpstreamKey is the context key for classifier upstream names.
	UpstreamKey contextKey = "upstream"

	// DigestKey is the context key for artifact digests.
	DigestKey contextKey = "digest"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// SpanIDKey is the context key for span IDs.
	SpanIDKey contextKey = "span_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithAPIKey adds an API key to the context.
func WithAPIKey(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, APIKeyKey, apiKey)
}

// GetAPIKey retrieves the API key from the context.
func GetAPIKey(ctx context.Context) string {
	if apiKey, ok := ctx.Value(APIKeyKey).(string); ok {
		return apiKey
	}
	return ""
}

// WithUpstream adds a classifier upstream name to the context.
func WithUpstream(ctx context.Context, upstream string) context.Context {
	return context.WithValue(ctx, UpstreamKey, upstream)
}

// GetUpstream retrieves the classifier upstream name from the context.
func GetUpstream(ctx context.Context) string {
	if upstream, ok := ctx.Value(UpstreamKey).(string); ok {
		return upstream
	}
	return ""
}

// WithDigest adds an artifact digest to the context.
func WithDigest(ctx context.Context, digest string) context.Context {
	return context.WithValue(ctx, DigestKey, digest)
}

// GetDigest retrieves the artifact digest from the context.
func GetDigest(ctx context.Context) string {
	if digest, ok := ctx.Value(DigestKey).(string); ok {
		return digest
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to the context.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves the span ID from the context.
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	// API keys are redacted by the logger when redaction is enabled
	if apiKey := GetAPIKey(ctx); apiKey != "" {
		fields = append(fields, "api_key", apiKey)
	}

	if upstream := GetUpstream(ctx); upstream != "" {
		fields = append(fields, "upstream", upstream)
	}

	if digest := GetDigest(ctx); digest != "" {
		fields = append(fields, "digest", digest)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if spanID := GetSpanID(ctx); spanID != "" {
		fields = append(fields, "span_id", spanID)
	}

	return fields
}

// ContextLogger is a logger that automatically includes context fields.
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// NewContextLogger creates a logger that automatically includes context fields.
func NewContextLogger(logger *Logger, ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: logger.WithContext(ctx),
		ctx:    ctx,
	}
}

// Debug logs a debug message with context fields.
func (cl *ContextLogger) Debug(msg string, args ...any) {
	cl.logger.DebugContext(cl.ctx, msg, args...)
}

// Info logs an info message with context fields.
func (cl *ContextLogger) Info(msg string, args ...any) {
	cl.logger.InfoContext(cl.ctx, msg, args...)
}

// Warn logs a warning message with context fields.
func (cl *ContextLogger) Warn(msg string, args ...any) {
	cl.logger.WarnContext(cl.ctx, msg, args...)
}

// Error logs an error message with context fields.
func (cl *ContextLogger) Error(msg string, args ...any) {
	cl.logger.ErrorContext(cl.ctx, msg, args...)
}

// With creates a new context logger with additional fields.
func (cl *ContextLogger) With(args ...any) *ContextLogger {
	return &ContextLogger{
		logger: cl.logger.With(args...),
		ctx:    cl.ctx,
	}
}
