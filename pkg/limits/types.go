package limits

import "time"

// Action defines what happens when a key exceeds a quota.
type Action string

const (
	// ActionWarn logs the violation and allows the request.
	ActionWarn Action = "warn"

	// ActionBlock rejects the request with 429 Too Many Requests.
	ActionBlock Action = "block"
)

// AnonymousKey is the shared bucket for requests that did not pass through
// the authentication gate.
const AnonymousKey = "anonymous"

// Window and resource labels, shared with the metrics collector.
const (
	WindowDaily   = "daily"
	WindowMonthly = "monthly"

	ResourceRequests = "requests"
	ResourceBytes    = "bytes"
)

// Window durations. Both windows roll continuously; there is no midnight
// or first-of-month reset.
const (
	dailyWindow   = 24 * time.Hour
	monthlyWindow = 30 * 24 * time.Hour

	dailyBucket   = time.Hour
	monthlyBucket = 24 * time.Hour
)

// Decision is the outcome of admitting one request against a key's quotas.
type Decision struct {
	// Allowed indicates whether the request may proceed.
	Allowed bool

	// Reason explains the violation. Non-empty on block, and on warn when
	// the request passed despite an exhausted quota.
	Reason string

	// Window names the violated window ("daily" or "monthly").
	Window string

	// Resource names the violated resource ("requests" or "bytes").
	Resource string

	// Limit is the configured quota for the violated resource.
	Limit int64

	// Used is the windowed usage at decision time.
	Used int64

	// RetryAfter estimates when window space frees up (block only).
	RetryAfter time.Duration
}

// Usage is the current windowed usage for one key.
type Usage struct {
	DailyRequests   int64
	DailyBytes      int64
	MonthlyRequests int64
	MonthlyBytes    int64
}

// BucketState is the serialized form of one usage bucket.
type BucketState struct {
	// Timestamp is the bucket boundary as a Unix timestamp.
	Timestamp int64 `json:"ts"`

	// Requests counted in this bucket.
	Requests int64 `json:"requests"`

	// Bytes counted in this bucket.
	Bytes int64 `json:"bytes"`
}

// WindowStates is the serializable usage state of one key, both windows.
type WindowStates struct {
	Daily   []BucketState `json:"daily"`
	Monthly []BucketState `json:"monthly"`
}

// Observer receives quota telemetry. *metrics.Collector satisfies it; a
// nil Observer disables recording.
type Observer interface {
	RecordQuotaRejection(key string)
	UpdateQuotaUsage(key, window, resource string, used float64)
}
