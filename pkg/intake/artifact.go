package intake

import "time"

// Default intake limits, matching the reference deployment.
const (
	// DefaultMaxBytes is the default artifact size ceiling (16 MiB).
	DefaultMaxBytes = 16 << 20

	// DefaultFetchTimeout bounds a remote artifact fetch.
	DefaultFetchTimeout = 15 * time.Second
)

// Source identifies the transport mode an artifact arrived through.
type Source string

// Transport modes.
const (
	SourceBase64 Source = "base64"
	SourceURL    Source = "url"
	SourceStream Source = "stream"
)

// Artifact is the normalized in-memory form of a submitted audio payload.
// It is immutable after creation and owned exclusively by one pipeline
// invocation.
type Artifact struct {
	// Data is the exact payload bytes.
	Data []byte

	// MIMEType is the declared or sniffed content type, never empty.
	MIMEType string

	// Filename is the caller-supplied name, possibly empty.
	Filename string

	// Size is the payload length in bytes.
	Size int64

	// Source records the transport mode.
	Source Source
}

// Limits bounds artifact materialization. The zero value of any field is
// replaced by its default.
type Limits struct {
	// MaxBytes is the artifact size ceiling.
	MaxBytes int64

	// FetchTimeout bounds one remote fetch.
	FetchTimeout time.Duration
}

// withDefaults fills zero-valued fields.
func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	if l.FetchTimeout <= 0 {
		l.FetchTimeout = DefaultFetchTimeout
	}
	return l
}
