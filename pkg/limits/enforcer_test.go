package limits

import (
	"strings"
	"sync"
	"testing"
)

type fakeObserver struct {
	mu         sync.Mutex
	rejections []string
	usage      map[string]float64
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{usage: make(map[string]float64)}
}

func (f *fakeObserver) RecordQuotaRejection(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejections = append(f.rejections, key)
}

func (f *fakeObserver) UpdateQuotaUsage(key, window, resource string, used float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[key+"/"+window+"/"+resource] = used
}

func TestEnforcer_UnknownKeyIsUnlimited(t *testing.T) {
	tracker := NewTracker()
	enforcer := NewEnforcer(tracker, map[string]Quota{}, ActionBlock)

	for i := 0; i < 100; i++ {
		decision := enforcer.Admit("unconfigured", 1<<20)
		if !decision.Allowed {
			t.Fatalf("request %d rejected for a key without quotas: %+v", i, decision)
		}
	}

	// Usage is still tracked for reporting.
	if got := enforcer.Usage("unconfigured").DailyRequests; got != 100 {
		t.Errorf("daily requests = %d, want 100", got)
	}
}

func TestEnforcer_AdmitWithinQuota(t *testing.T) {
	tracker := NewTracker()
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyRequests: 10, DailyBytes: 1000},
	}, ActionBlock)

	decision := enforcer.Admit("alpha", 100)
	if !decision.Allowed {
		t.Fatalf("decision = %+v, want allowed", decision)
	}
	if decision.Reason != "" {
		t.Errorf("reason = %q, want empty for a clean admit", decision.Reason)
	}

	usage := enforcer.Usage("alpha")
	if usage.DailyRequests != 1 || usage.DailyBytes != 100 {
		t.Errorf("usage = %+v, want 1 request and 100 bytes", usage)
	}
}

func TestEnforcer_ViolationOrder(t *testing.T) {
	tests := []struct {
		name         string
		quota        Quota
		priorBytes   int64
		priorCount   int
		bytes        int64
		wantWindow   string
		wantResource string
		wantLimit    int64
	}{
		{
			name:         "daily requests exhausted",
			quota:        Quota{DailyRequests: 2},
			priorCount:   2,
			wantWindow:   WindowDaily,
			wantResource: ResourceRequests,
			wantLimit:    2,
		},
		{
			name:         "monthly requests exhausted",
			quota:        Quota{MonthlyRequests: 3},
			priorCount:   3,
			wantWindow:   WindowMonthly,
			wantResource: ResourceRequests,
			wantLimit:    3,
		},
		{
			name:         "daily requests checked before monthly",
			quota:        Quota{DailyRequests: 2, MonthlyRequests: 2},
			priorCount:   2,
			wantWindow:   WindowDaily,
			wantResource: ResourceRequests,
			wantLimit:    2,
		},
		{
			name:         "daily bytes would overflow",
			quota:        Quota{DailyBytes: 100},
			priorCount:   1,
			priorBytes:   60,
			bytes:        50,
			wantWindow:   WindowDaily,
			wantResource: ResourceBytes,
			wantLimit:    100,
		},
		{
			name:         "monthly bytes would overflow",
			quota:        Quota{MonthlyBytes: 100},
			priorCount:   1,
			priorBytes:   80,
			bytes:        30,
			wantWindow:   WindowMonthly,
			wantResource: ResourceBytes,
			wantLimit:    100,
		},
		{
			name:         "requests checked before bytes",
			quota:        Quota{DailyRequests: 1, DailyBytes: 10},
			priorCount:   1,
			priorBytes:   50,
			bytes:        50,
			wantWindow:   WindowDaily,
			wantResource: ResourceRequests,
			wantLimit:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			for i := 0; i < tt.priorCount; i++ {
				perRequest := int64(0)
				if i == 0 {
					perRequest = tt.priorBytes
				}
				tracker.Record("alpha", perRequest)
			}

			enforcer := NewEnforcer(tracker, map[string]Quota{"alpha": tt.quota}, ActionBlock)
			decision := enforcer.Admit("alpha", tt.bytes)

			if decision.Allowed {
				t.Fatalf("decision = %+v, want rejected", decision)
			}
			if decision.Window != tt.wantWindow {
				t.Errorf("window = %q, want %q", decision.Window, tt.wantWindow)
			}
			if decision.Resource != tt.wantResource {
				t.Errorf("resource = %q, want %q", decision.Resource, tt.wantResource)
			}
			if decision.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", decision.Limit, tt.wantLimit)
			}
			if decision.Reason == "" {
				t.Error("reason is empty on rejection")
			}
		})
	}
}

func TestEnforcer_BlockedRequestConsumesNoQuota(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("alpha", 10)
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyRequests: 1},
	}, ActionBlock)

	before := enforcer.Usage("alpha")
	decision := enforcer.Admit("alpha", 500)
	after := enforcer.Usage("alpha")

	if decision.Allowed {
		t.Fatalf("decision = %+v, want rejected", decision)
	}
	if after != before {
		t.Errorf("usage changed by a blocked request: before %+v, after %+v", before, after)
	}
	if decision.RetryAfter <= 0 {
		t.Errorf("retry-after = %v, want positive", decision.RetryAfter)
	}
	if decision.RetryAfter > dailyWindow {
		t.Errorf("retry-after = %v, want at most the daily window", decision.RetryAfter)
	}
}

func TestEnforcer_ExactByteFitAdmitted(t *testing.T) {
	tracker := NewTracker()
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyBytes: 100},
	}, ActionBlock)

	// Landing exactly on the ceiling still fits.
	if decision := enforcer.Admit("alpha", 100); !decision.Allowed {
		t.Fatalf("exact-fit request rejected: %+v", decision)
	}
	// The next byte does not.
	if decision := enforcer.Admit("alpha", 1); decision.Allowed {
		t.Fatalf("request past the ceiling admitted: %+v", decision)
	}
}

func TestEnforcer_WarnAdmitsAndRecordsViolation(t *testing.T) {
	tracker := NewTracker()
	tracker.Record("alpha", 0)
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyRequests: 1},
	}, ActionWarn)

	decision := enforcer.Admit("alpha", 25)

	if !decision.Allowed {
		t.Fatalf("decision = %+v, want allowed under warn", decision)
	}
	if !strings.Contains(decision.Reason, "quota exceeded") {
		t.Errorf("reason = %q, want a quota violation description", decision.Reason)
	}
	if decision.Window != WindowDaily || decision.Resource != ResourceRequests {
		t.Errorf("violation labels = %q/%q, want daily/requests", decision.Window, decision.Resource)
	}

	// Warned requests still count.
	usage := enforcer.Usage("alpha")
	if usage.DailyRequests != 2 || usage.DailyBytes != 25 {
		t.Errorf("usage = %+v, want the warned request recorded", usage)
	}
}

func TestEnforcer_UnknownActionFallsBackToWarn(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   Action
	}{
		{name: "empty", action: Action(""), want: ActionWarn},
		{name: "misspelled", action: Action("bloc"), want: ActionWarn},
		{name: "warn", action: ActionWarn, want: ActionWarn},
		{name: "block", action: ActionBlock, want: ActionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enforcer := NewEnforcer(NewTracker(), nil, tt.action)
			if got := enforcer.Action(); got != tt.want {
				t.Errorf("action = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnforcer_NegativeBytesTreatedAsZero(t *testing.T) {
	tracker := NewTracker()
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyBytes: 10},
	}, ActionBlock)

	if decision := enforcer.Admit("alpha", -512); !decision.Allowed {
		t.Fatalf("decision = %+v, want allowed", decision)
	}
	if got := enforcer.Usage("alpha").DailyBytes; got != 0 {
		t.Errorf("daily bytes = %d, want 0", got)
	}
}

func TestEnforcer_ObserverSeesRejectionsAndUsage(t *testing.T) {
	observer := newFakeObserver()
	tracker := NewTracker()
	enforcer := NewEnforcer(tracker, map[string]Quota{
		"alpha": {DailyRequests: 1},
	}, ActionBlock).WithObserver(observer)

	enforcer.Admit("alpha", 40)
	enforcer.Admit("alpha", 40)

	observer.mu.Lock()
	defer observer.mu.Unlock()

	if len(observer.rejections) != 1 || observer.rejections[0] != "alpha" {
		t.Errorf("rejections = %v, want exactly one for alpha", observer.rejections)
	}
	if got := observer.usage["alpha/daily/requests"]; got != 1 {
		t.Errorf("observed daily requests = %v, want 1", got)
	}
	if got := observer.usage["alpha/daily/bytes"]; got != 40 {
		t.Errorf("observed daily bytes = %v, want 40", got)
	}
	if got := observer.usage["alpha/monthly/requests"]; got != 1 {
		t.Errorf("observed monthly requests = %v, want 1", got)
	}
}
