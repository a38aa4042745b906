package intake

import "fmt"

// Stable reason strings for InputError. Handlers return these to callers
// verbatim, so they are part of the API contract.
const (
	// ReasonInvalidEncoding indicates a malformed base64 blob.
	ReasonInvalidEncoding = "invalid encoding"

	// ReasonFetchFailed indicates the remote fetch did not complete.
	ReasonFetchFailed = "remote fetch failed"

	// ReasonRemoteTooLarge indicates the remote transfer crossed the byte
	// ceiling mid-stream.
	ReasonRemoteTooLarge = "remote payload too large"

	// ReasonNoSource indicates the request supplied neither blob nor URL.
	ReasonNoSource = "no data source"

	// ReasonEmptyPayload indicates the decoded or fetched payload was empty.
	ReasonEmptyPayload = "empty payload"

	// ReasonUnreadable indicates the raw request stream could not be read.
	ReasonUnreadable = "unreadable payload"
)

// InputError indicates malformed or missing artifact data. It is
// caller-fixable and maps to HTTP 400.
type InputError struct {
	// Reason is the stable, caller-facing reason string.
	Reason string

	// Detail is optional diagnostic context, safe to return to callers.
	Detail string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("input error: %s: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("input error: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain support.
func (e *InputError) Unwrap() error {
	return e.Cause
}

// PayloadTooLargeError indicates a materialized artifact exceeded the
// configured maximum. It maps to HTTP 413.
type PayloadTooLargeError struct {
	// Size is the observed payload size in bytes.
	Size int64

	// Limit is the configured maximum in bytes.
	Limit int64
}

// Error implements the error interface.
func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}
