package classify

import (
	"context"
	"time"

	"veristone-hq/clarion/pkg/intake"
)

// PayloadStyle selects how an artifact is carried to an upstream.
type PayloadStyle string

// Supported payload styles.
const (
	// PayloadBinary posts the raw artifact bytes with its MIME type.
	PayloadBinary PayloadStyle = "binary"

	// PayloadBase64JSON posts a JSON envelope with the base64-encoded
	// content.
	PayloadBase64JSON PayloadStyle = "base64-json"
)

// Default upstream call bounds.
const (
	// DefaultTimeout bounds one upstream call.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the retry budget for transient upstream errors.
	DefaultMaxRetries = 2
)

// UpstreamConfig describes one configured classification service.
type UpstreamConfig struct {
	// Name identifies the upstream in signals, logs, and metrics.
	Name string

	// Endpoint is the full URL the artifact is posted to.
	Endpoint string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// AuthHeader overrides the Authorization header name (some services
	// use X-API-Key).
	AuthHeader string

	// PayloadStyle selects binary or base64-json transport.
	PayloadStyle PayloadStyle

	// Extraction names the response-shape rule used to pull a score.
	Extraction Extraction

	// Timeout bounds one call including retries inside it.
	Timeout time.Duration

	// MaxRetries is the retry budget for 5xx responses and transport
	// errors.
	MaxRetries int
}

// HealthStatus is a point-in-time view of an upstream's health.
type HealthStatus struct {
	// IsHealthy is false after three consecutive failures.
	IsHealthy bool

	// LastCheck is when health was last updated.
	LastCheck time.Time

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastError is the most recent failure, nil when healthy.
	LastError error

	// LastSuccess is the time of the last successful call.
	LastSuccess time.Time

	// TotalCalls and FailedCalls count calls over the process lifetime.
	TotalCalls  int64
	FailedCalls int64
}

// Classifier is the contract every upstream adapter implements.
//
// All methods accept a context.Context for cancellation and timeout
// control; implementations must return promptly when the context is
// cancelled.
type Classifier interface {
	// Name returns the configured upstream name.
	Name() string

	// Classify submits the artifact and returns the extracted signal.
	// Failures are returned as errors; the aggregator converts them into
	// degraded signals.
	Classify(ctx context.Context, artifact *intake.Artifact) (*Signal, error)

	// HealthCheck probes the upstream endpoint.
	HealthCheck(ctx context.Context) error

	// GetHealth returns detailed health information.
	GetHealth() HealthStatus

	// IsHealthy returns the current health flag.
	IsHealthy() bool

	// Close releases client resources.
	Close() error
}
