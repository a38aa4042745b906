package report

import (
	"context"
	"time"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
)

// Metadata identifies the analyzed content and how it arrived.
type Metadata struct {
	// Digest is the hex-encoded SHA-256 hash of the exact artifact bytes.
	Digest string `json:"digest"`

	// Filename is the caller-supplied name, if any.
	Filename string `json:"filename,omitempty"`

	// MIMEType is the declared or sniffed content type.
	MIMEType string `json:"mime_type"`

	// SizeBytes is the materialized payload size.
	SizeBytes int64 `json:"size_bytes"`

	// Source tags how the payload arrived: base64, url, or stream.
	Source string `json:"source"`
}

// TrustReport is the complete outcome of one analysis. It is immutable once
// assembled: treat every field as read-only.
type TrustReport struct {
	// ID is a UUID v4 unique to this analysis run.
	ID string `json:"id"`

	// Metadata describes the analyzed artifact.
	Metadata Metadata `json:"metadata"`

	// Features is the heuristic feature set extracted from the bytes.
	Features analysis.FeatureSet `json:"features"`

	// Signals holds one entry per configured upstream, failed ones included.
	Signals []classify.Signal `json:"signals"`

	// CompositeScore is the final trust score in [0, 1].
	CompositeScore float64 `json:"composite_score"`

	// Method names the signal family that decided the score.
	Method string `json:"method"`

	// Breakdown maps each scored component to its weighted contribution.
	Breakdown map[string]float64 `json:"breakdown"`

	// ProcessedAt is the assembly time in UTC.
	ProcessedAt time.Time `json:"processed_at"`
}

// Query defines filter parameters for querying archived reports.
type Query struct {
	// Time range, matched against ProcessedAt.
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Digest string `json:"digest,omitempty"` // Content digest
	Method string `json:"method,omitempty"` // Scoring method tag
	Format string `json:"format,omitempty"` // Detected container format
	Source string `json:"source,omitempty"` // Intake source tag

	// Score thresholds
	MinScore *float64 `json:"min_score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "processed_at", "composite_score"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for report archive backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a report.
	Store(ctx context.Context, report *TrustReport) error

	// Get retrieves a single report by ID. Returns ErrNotFound when no
	// report has that ID.
	Get(ctx context.Context, id string) (*TrustReport, error)

	// Query retrieves reports matching the filters. Returns an empty slice
	// when nothing matches.
	Query(ctx context.Context, query *Query) ([]*TrustReport, error)

	// Count returns the number of reports matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes reports matching the filters and returns how many
	// were removed. Used for retention enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Forwarder hands finished reports to their destinations without blocking
// the caller. Implementations drop rather than block when saturated.
type Forwarder interface {
	Emit(ctx context.Context, report *TrustReport)
}
