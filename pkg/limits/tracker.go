package limits

import (
	"sync"
	"time"
)

// Tracker accumulates per-key usage over the daily and monthly windows.
//
// The Tracker is pure bookkeeping: it holds no quota configuration and
// makes no decisions. Windows for a key are created lazily on first use,
// so the memory footprint follows the set of active keys.
type Tracker struct {
	mu   sync.RWMutex
	keys map[string]*keyWindows
}

// keyWindows pairs the two rolling windows of one key.
type keyWindows struct {
	daily   *RollingWindow
	monthly *RollingWindow
}

// NewTracker creates an empty usage tracker.
func NewTracker() *Tracker {
	return &Tracker{
		keys: make(map[string]*keyWindows),
	}
}

// Record counts one request and its bytes against a key, in both windows.
func (t *Tracker) Record(key string, bytes int64) {
	windows := t.windowsFor(key)
	windows.daily.Add(1, bytes)
	windows.monthly.Add(1, bytes)
}

// Usage returns the current windowed usage for a key. A key that was never
// recorded reports zero usage.
func (t *Tracker) Usage(key string) Usage {
	t.mu.RLock()
	windows, ok := t.keys[key]
	t.mu.RUnlock()

	if !ok {
		return Usage{}
	}

	var usage Usage
	usage.DailyRequests, usage.DailyBytes = windows.daily.Totals()
	usage.MonthlyRequests, usage.MonthlyBytes = windows.monthly.Totals()
	return usage
}

// NextExpiry returns when the oldest usage in the named window leaves it,
// zero when the window is empty or unknown.
func (t *Tracker) NextExpiry(key, window string) time.Time {
	t.mu.RLock()
	windows, ok := t.keys[key]
	t.mu.RUnlock()

	if !ok {
		return time.Time{}
	}

	switch window {
	case WindowDaily:
		oldest := windows.daily.OldestTimestamp()
		if oldest.IsZero() {
			return time.Time{}
		}
		return oldest.Add(dailyWindow)
	case WindowMonthly:
		oldest := windows.monthly.OldestTimestamp()
		if oldest.IsZero() {
			return time.Time{}
		}
		return oldest.Add(monthlyWindow)
	}

	return time.Time{}
}

// Keys returns every key with recorded usage.
func (t *Tracker) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.keys))
	for key := range t.keys {
		keys = append(keys, key)
	}
	return keys
}

// Snapshot returns the serializable state of every tracked key.
func (t *Tracker) Snapshot() map[string]WindowStates {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]WindowStates, len(t.keys))
	for key, windows := range t.keys {
		snapshot[key] = WindowStates{
			Daily:   windows.daily.Snapshot(),
			Monthly: windows.monthly.Snapshot(),
		}
	}
	return snapshot
}

// Restore loads persisted usage state, replacing any current state for the
// restored keys. Expired buckets drop out on the next operation.
func (t *Tracker) Restore(snapshot map[string]WindowStates) {
	for key, states := range snapshot {
		windows := t.windowsFor(key)
		windows.daily.Restore(states.Daily)
		windows.monthly.Restore(states.Monthly)
	}
}

// windowsFor returns the windows of a key, creating them on first use.
func (t *Tracker) windowsFor(key string) *keyWindows {
	t.mu.RLock()
	windows, ok := t.keys[key]
	t.mu.RUnlock()
	if ok {
		return windows
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if windows, ok = t.keys[key]; ok {
		return windows
	}

	windows = &keyWindows{
		daily:   NewRollingWindow(dailyWindow, dailyBucket),
		monthly: NewRollingWindow(monthlyWindow, monthlyBucket),
	}
	t.keys[key] = windows
	return windows
}
