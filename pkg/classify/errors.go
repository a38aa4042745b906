package classify

import (
	"fmt"
	"time"
)

// UpstreamError represents a general upstream failure. It includes the
// upstream name, HTTP status code, and underlying error.
type UpstreamError struct {
	// Upstream is the name of the upstream that returned the error
	Upstream string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %q error (status %d): %s", e.Upstream, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %q error: %s", e.Upstream, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403).
type AuthError struct {
	// Upstream is the name of the upstream that rejected authentication
	Upstream string

	// Message is the error message from the upstream
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream %q authentication failed: %s", e.Upstream, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429). It
// includes the retry-after duration if provided by the upstream.
type RateLimitError struct {
	// Upstream is the name of the upstream that rate limited the call
	Upstream string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the upstream
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream %q rate limit exceeded (retry after %s): %s",
			e.Upstream, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("upstream %q rate limit exceeded: %s", e.Upstream, e.Message)
}

// TimeoutError represents a call that exceeded its configured timeout.
type TimeoutError struct {
	// Upstream is the name of the upstream where the timeout occurred
	Upstream string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %q call timeout after %s", e.Upstream, e.Timeout)
}

// ExtractionError represents a response from which no numeric score could
// be extracted. It is treated identically to a transport failure: the
// signal degrades rather than fabricating a score.
type ExtractionError struct {
	// Upstream is the name of the upstream that returned the response
	Upstream string

	// Extraction is the configured extraction rule
	Extraction Extraction

	// Detail describes what the response was missing
	Detail string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("upstream %q response yielded no score via %q: %s",
		e.Upstream, e.Extraction, e.Detail)
}

// ConfigError represents an invalid upstream configuration.
type ConfigError struct {
	// Upstream is the name of the upstream with invalid configuration
	Upstream string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("upstream %q configuration error for field %q: %s",
		e.Upstream, e.Field, e.Message)
}
