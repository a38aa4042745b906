package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"veristone-hq/clarion/pkg/intake"
)

const (
	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// FilenameHeader carries an optional artifact name on raw uploads.
	FilenameHeader = "X-Filename"

	// AuthorizationHeader is the HTTP header for API key authentication.
	AuthorizationHeader = "Authorization"

	// jsonOverheadBytes is headroom for the JSON framing around a base64
	// blob (field names, quotes, filename, mimetype).
	jsonOverheadBytes = 64 * 1024
)

// MaxAnalyzeBody returns the wire ceiling for the POST /v1/analyze JSON
// body given the decoded artifact ceiling. Base64 expands payloads by 4/3,
// so the wire limit is derived rather than configured separately.
func MaxAnalyzeBody(maxArtifactBytes int64) int64 {
	encoded := base64.StdEncoding.EncodedLen(int(maxArtifactBytes))
	return int64(encoded) + jsonOverheadBytes
}

// ParseAnalyzeRequest parses an HTTP request body into an AnalyzeRequest.
// It enforces the wire ceiling, rejects malformed JSON, and validates that
// exactly one data source is named.
//
// The decoded artifact is still subject to the intake size check; the wire
// ceiling here only prevents reading an unbounded body into memory.
func ParseAnalyzeRequest(r *http.Request, maxArtifactBytes int64) (*AnalyzeRequest, error) {
	maxBody := MaxAnalyzeBody(maxArtifactBytes)

	// Read one byte past the ceiling so an exactly-at-limit body is
	// distinguishable from an over-limit one.
	limitedReader := io.LimitReader(r.Body, maxBody+1)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, &intake.InputError{
			Reason: intake.ReasonUnreadable,
			Detail: "failed to read request body",
			Cause:  err,
		}
	}

	if int64(len(body)) > maxBody {
		return nil, &intake.PayloadTooLargeError{
			Size:  int64(len(body)),
			Limit: maxBody,
		}
	}

	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &intake.InputError{
			Reason: intake.ReasonUnreadable,
			Detail: fmt.Sprintf("invalid JSON: %v", err),
			Cause:  err,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// DeclaredMIMEType extracts the media type from a Content-Type header,
// stripping parameters such as charset. An empty or unparseable header
// yields an empty string, which defers to magic-byte sniffing.
func DeclaredMIMEType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}
