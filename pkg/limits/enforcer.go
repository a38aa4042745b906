package limits

import (
	"fmt"
	"time"
)

// Enforcer admits or rejects requests against per-key quotas.
//
// Admission is a point-in-time check of the key's rolling windows followed,
// for admitted requests, by recording the new usage. Rejected requests
// consume no quota. Keys without a configured quota are tracked but never
// limited.
type Enforcer struct {
	tracker  *Tracker
	quotas   map[string]Quota
	action   Action
	observer Observer
}

// Quota bounds one key's usage. A zero value on any dimension means that
// dimension is unlimited.
type Quota struct {
	DailyRequests   int64
	MonthlyRequests int64
	DailyBytes      int64
	MonthlyBytes    int64
}

// NewEnforcer creates an enforcer over the given tracker. An unknown or
// empty action falls back to ActionWarn, the non-destructive default.
func NewEnforcer(tracker *Tracker, quotas map[string]Quota, action Action) *Enforcer {
	if action != ActionBlock {
		action = ActionWarn
	}
	return &Enforcer{
		tracker: tracker,
		quotas:  quotas,
		action:  action,
	}
}

// WithObserver attaches quota telemetry recording. Call before serving.
func (e *Enforcer) WithObserver(observer Observer) *Enforcer {
	e.observer = observer
	return e
}

// Admit decides whether one request of the given byte size may proceed for
// key, and records the usage when it does.
//
// Violations are checked in a fixed order: daily requests, monthly
// requests, daily bytes, monthly bytes; the Decision names the first one
// hit. Under ActionWarn a violating request is still admitted (and
// recorded) with the violation described in Reason.
func (e *Enforcer) Admit(key string, bytes int64) Decision {
	if bytes < 0 {
		bytes = 0
	}

	quota, limited := e.quotas[key]
	if !limited {
		e.record(key, bytes)
		return Decision{Allowed: true}
	}

	usage := e.tracker.Usage(key)
	violation := e.check(quota, usage, bytes)

	if violation == nil {
		e.record(key, bytes)
		return Decision{Allowed: true}
	}

	if e.action == ActionWarn {
		e.record(key, bytes)
		violation.Allowed = true
		return *violation
	}

	violation.Allowed = false
	violation.RetryAfter = e.retryAfter(key, violation.Window)
	if e.observer != nil {
		e.observer.RecordQuotaRejection(key)
	}
	return *violation
}

// Usage reports the current windowed usage for a key.
func (e *Enforcer) Usage(key string) Usage {
	return e.tracker.Usage(key)
}

// Action returns the configured enforcement action.
func (e *Enforcer) Action() Action {
	return e.action
}

// check returns the first quota violation, nil when the request fits.
// Request dimensions compare current usage against the limit (the incoming
// request adds exactly one); byte dimensions check whether the incoming
// size would cross the ceiling.
func (e *Enforcer) check(quota Quota, usage Usage, bytes int64) *Decision {
	if quota.DailyRequests > 0 && usage.DailyRequests >= quota.DailyRequests {
		return violation(WindowDaily, ResourceRequests, quota.DailyRequests, usage.DailyRequests)
	}
	if quota.MonthlyRequests > 0 && usage.MonthlyRequests >= quota.MonthlyRequests {
		return violation(WindowMonthly, ResourceRequests, quota.MonthlyRequests, usage.MonthlyRequests)
	}
	if quota.DailyBytes > 0 && usage.DailyBytes+bytes > quota.DailyBytes {
		return violation(WindowDaily, ResourceBytes, quota.DailyBytes, usage.DailyBytes)
	}
	if quota.MonthlyBytes > 0 && usage.MonthlyBytes+bytes > quota.MonthlyBytes {
		return violation(WindowMonthly, ResourceBytes, quota.MonthlyBytes, usage.MonthlyBytes)
	}
	return nil
}

// record counts the admitted request and mirrors usage into the observer.
func (e *Enforcer) record(key string, bytes int64) {
	e.tracker.Record(key, bytes)

	if e.observer == nil {
		return
	}
	usage := e.tracker.Usage(key)
	e.observer.UpdateQuotaUsage(key, WindowDaily, ResourceRequests, float64(usage.DailyRequests))
	e.observer.UpdateQuotaUsage(key, WindowDaily, ResourceBytes, float64(usage.DailyBytes))
	e.observer.UpdateQuotaUsage(key, WindowMonthly, ResourceRequests, float64(usage.MonthlyRequests))
	e.observer.UpdateQuotaUsage(key, WindowMonthly, ResourceBytes, float64(usage.MonthlyBytes))
}

// retryAfter estimates when the violated window frees space: the moment
// its oldest usage bucket expires. Zero when the window state is gone.
func (e *Enforcer) retryAfter(key, window string) time.Duration {
	expiry := e.tracker.NextExpiry(key, window)
	if expiry.IsZero() {
		return 0
	}
	wait := time.Until(expiry)
	if wait < 0 {
		return 0
	}
	return wait
}

// violation builds the Decision describing one exceeded dimension.
func violation(window, resource string, limit, used int64) *Decision {
	return &Decision{
		Reason:   fmt.Sprintf("%s %s quota exceeded: %d of %d used", window, resource, used, limit),
		Window:   window,
		Resource: resource,
		Limit:    limit,
		Used:     used,
	}
}
