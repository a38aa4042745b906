package limits

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTracker_RecordAndUsage(t *testing.T) {
	tracker := NewTracker()

	tracker.Record("alpha", 100)
	tracker.Record("alpha", 250)
	tracker.Record("beta", 10)

	got := tracker.Usage("alpha")
	want := Usage{
		DailyRequests:   2,
		DailyBytes:      350,
		MonthlyRequests: 2,
		MonthlyBytes:    350,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_UnknownKeyReportsZero(t *testing.T) {
	tracker := NewTracker()

	if got := tracker.Usage("never-seen"); got != (Usage{}) {
		t.Errorf("usage = %+v, want zero value", got)
	}
}

func TestTracker_Keys(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("alpha", 1)
	tracker.Record("beta", 1)
	tracker.Record("alpha", 1)

	keys := tracker.Keys()
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"alpha", "beta"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_NextExpiry(t *testing.T) {
	tracker := NewTracker()

	if got := tracker.NextExpiry("alpha", WindowDaily); !got.IsZero() {
		t.Errorf("expiry for unknown key = %v, want zero", got)
	}

	now := time.Now()
	tracker.Record("alpha", 1)

	tests := []struct {
		name   string
		window string
		span   time.Duration
		bucket time.Duration
	}{
		{name: "daily", window: WindowDaily, span: dailyWindow, bucket: dailyBucket},
		{name: "monthly", window: WindowMonthly, span: monthlyWindow, bucket: monthlyBucket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tracker.NextExpiry("alpha", tt.window)
			if got.IsZero() {
				t.Fatal("expiry is zero after recording usage")
			}
			// The bucket boundary is at most one bucket behind now, so
			// expiry lands inside (now+span-bucket, now+span].
			lo := now.Add(tt.span - tt.bucket - time.Second)
			hi := now.Add(tt.span + time.Second)
			if got.Before(lo) || got.After(hi) {
				t.Errorf("expiry = %v, want within (%v, %v)", got, lo, hi)
			}
		})
	}
}

func TestTracker_NextExpiryUnknownWindow(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("alpha", 1)

	if got := tracker.NextExpiry("alpha", "weekly"); !got.IsZero() {
		t.Errorf("expiry for unknown window = %v, want zero", got)
	}
}

func TestTracker_SnapshotRestoreRoundTrip(t *testing.T) {
	original := NewTracker()
	original.Record("alpha", 100)
	original.Record("alpha", 50)
	original.Record("beta", 2048)

	restored := NewTracker()
	restored.Restore(original.Snapshot())

	for _, key := range []string{"alpha", "beta"} {
		if diff := cmp.Diff(original.Usage(key), restored.Usage(key)); diff != "" {
			t.Errorf("usage mismatch for %q (-original +restored):\n%s", key, diff)
		}
	}

	keys := restored.Keys()
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"alpha", "beta"}, keys); diff != "" {
		t.Errorf("restored keys mismatch (-want +got):\n%s", diff)
	}
}

func TestTracker_RestoreReplacesExistingState(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("alpha", 999)

	fresh := NewTracker()
	fresh.Record("alpha", 10)
	tracker.Restore(fresh.Snapshot())

	got := tracker.Usage("alpha")
	if got.DailyRequests != 1 || got.DailyBytes != 10 {
		t.Errorf("usage = %+v, want the restored single request of 10 bytes", got)
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewTracker()

	const goroutines = 8
	const perGoroutine = 50

	done := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < perGoroutine; j++ {
				tracker.Record("shared", 2)
			}
		}()
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	got := tracker.Usage("shared")
	if got.DailyRequests != goroutines*perGoroutine {
		t.Errorf("daily requests = %d, want %d", got.DailyRequests, goroutines*perGoroutine)
	}
	if got.DailyBytes != goroutines*perGoroutine*2 {
		t.Errorf("daily bytes = %d, want %d", got.DailyBytes, goroutines*perGoroutine*2)
	}
}
