package limits

import (
	"sync"
	"time"
)

// RollingWindow tracks request and byte counts over a rolling time window.
//
// The window is divided into fixed-size buckets held in a circular buffer;
// buckets that fall outside the window are pruned on every operation.
// Granularity follows the window: the daily window uses 1-hour buckets,
// the monthly window 1-day buckets, so usage expires in bucket-size steps
// rather than all at once.
//
// RollingWindow is safe for concurrent use.
type RollingWindow struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []usageBucket
	mu         sync.RWMutex
}

// usageBucket holds the counts of one time interval.
type usageBucket struct {
	timestamp time.Time
	requests  int64
	bytes     int64
}

// NewRollingWindow creates a rolling usage window.
//
// Example:
//
//	daily := NewRollingWindow(24*time.Hour, time.Hour)
//	monthly := NewRollingWindow(30*24*time.Hour, 24*time.Hour)
func NewRollingWindow(window, bucketSize time.Duration) *RollingWindow {
	numBuckets := int(window / bucketSize)
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &RollingWindow{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]usageBucket, numBuckets),
	}
}

// Add counts requests and bytes in the bucket for the current time.
// Buckets outside the window are pruned first.
func (rw *RollingWindow) Add(requests, bytes int64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	now := time.Now()
	rw.pruneLocked(now)

	current := rw.findOrCreateBucketLocked(now)
	current.requests += requests
	current.bytes += bytes
}

// Totals returns the summed requests and bytes across the window, pruning
// expired buckets first.
func (rw *RollingWindow) Totals() (requests, bytes int64) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	now := time.Now()
	rw.pruneLocked(now)

	for i := 0; i < len(rw.buckets); i++ {
		if !rw.buckets[i].timestamp.IsZero() {
			requests += rw.buckets[i].requests
			bytes += rw.buckets[i].bytes
		}
	}

	return requests, bytes
}

// Reset clears all buckets.
func (rw *RollingWindow) Reset() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for i := 0; i < len(rw.buckets); i++ {
		rw.buckets[i] = usageBucket{}
	}
}

// OldestTimestamp returns the timestamp of the oldest occupied bucket.
// Usage starts expiring when that bucket leaves the window.
func (rw *RollingWindow) OldestTimestamp() time.Time {
	rw.mu.RLock()
	defer rw.mu.RUnlock()

	var oldest time.Time
	for i := 0; i < len(rw.buckets); i++ {
		if !rw.buckets[i].timestamp.IsZero() {
			if oldest.IsZero() || rw.buckets[i].timestamp.Before(oldest) {
				oldest = rw.buckets[i].timestamp
			}
		}
	}

	return oldest
}

// Snapshot returns the occupied buckets in serializable form.
func (rw *RollingWindow) Snapshot() []BucketState {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.pruneLocked(time.Now())

	states := make([]BucketState, 0, len(rw.buckets))
	for i := 0; i < len(rw.buckets); i++ {
		if rw.buckets[i].timestamp.IsZero() {
			continue
		}
		states = append(states, BucketState{
			Timestamp: rw.buckets[i].timestamp.Unix(),
			Requests:  rw.buckets[i].requests,
			Bytes:     rw.buckets[i].bytes,
		})
	}

	return states
}

// Restore replaces the window contents with persisted bucket states.
// Buckets already outside the window are dropped on the next operation.
func (rw *RollingWindow) Restore(states []BucketState) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	for i := 0; i < len(rw.buckets); i++ {
		rw.buckets[i] = usageBucket{}
	}

	for i, state := range states {
		if i >= len(rw.buckets) {
			break
		}
		rw.buckets[i] = usageBucket{
			timestamp: time.Unix(state.Timestamp, 0),
			requests:  state.Requests,
			bytes:     state.Bytes,
		}
	}
}

// pruneLocked clears buckets older than the window.
// Caller must hold the write lock.
func (rw *RollingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-rw.window)

	for i := 0; i < len(rw.buckets); i++ {
		if !rw.buckets[i].timestamp.IsZero() && rw.buckets[i].timestamp.Before(cutoff) {
			rw.buckets[i] = usageBucket{}
		}
	}
}

// findOrCreateBucketLocked finds the bucket for the current time, reusing
// an empty slot or evicting the oldest bucket when none matches.
// Caller must hold the write lock.
func (rw *RollingWindow) findOrCreateBucketLocked(now time.Time) *usageBucket {
	bucketTime := now.Truncate(rw.bucketSize)

	for i := 0; i < len(rw.buckets); i++ {
		if rw.buckets[i].timestamp.Equal(bucketTime) {
			return &rw.buckets[i]
		}
	}

	targetIdx := -1
	for i := 0; i < len(rw.buckets); i++ {
		if rw.buckets[i].timestamp.IsZero() {
			targetIdx = i
			break
		}
	}

	if targetIdx == -1 {
		oldestIdx := 0
		oldestTime := rw.buckets[0].timestamp

		for i := 1; i < len(rw.buckets); i++ {
			if rw.buckets[i].timestamp.Before(oldestTime) {
				oldestIdx = i
				oldestTime = rw.buckets[i].timestamp
			}
		}

		targetIdx = oldestIdx
	}

	rw.buckets[targetIdx] = usageBucket{timestamp: bucketTime}
	return &rw.buckets[targetIdx]
}
