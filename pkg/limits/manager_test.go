package limits

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"veristone-hq/clarion/pkg/config"
)

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(config.LimitsConfig{
		Action: "block",
		ByKey: map[string]config.QuotaLimits{
			"alpha": {DailyRequests: 1},
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	enforcer := m.Enforcer()
	if enforcer == nil {
		t.Fatal("enforcer is nil")
	}
	if got := enforcer.Action(); got != ActionBlock {
		t.Errorf("action = %q, want block", got)
	}

	if decision := enforcer.Admit("alpha", 10); !decision.Allowed {
		t.Fatalf("first request rejected: %+v", decision)
	}
	if decision := enforcer.Admit("alpha", 10); decision.Allowed {
		t.Fatalf("second request admitted past the quota: %+v", decision)
	}

	// Snapshot without persistence is a no-op.
	if err := m.Snapshot(context.Background()); err != nil {
		t.Errorf("snapshot: %v", err)
	}
}

func TestManager_DefaultSnapshotInterval(t *testing.T) {
	m, err := NewManager(config.LimitsConfig{})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	if m.interval != defaultSnapshotInterval {
		t.Errorf("interval = %v, want %v", m.interval, defaultSnapshotInterval)
	}
}

func TestManager_QuotaMappingFromConfig(t *testing.T) {
	m, err := NewManager(config.LimitsConfig{
		Action: "block",
		ByKey: map[string]config.QuotaLimits{
			"alpha": {DailyBytes: 64},
		},
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	if decision := m.Enforcer().Admit("alpha", 65); decision.Allowed {
		t.Fatalf("oversized request admitted: %+v", decision)
	}
	if decision := m.Enforcer().Admit("alpha", 64); !decision.Allowed {
		t.Fatalf("exact-fit request rejected: %+v", decision)
	}
}

func TestManager_UsageSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.db")
	cfg := config.LimitsConfig{
		StoragePath:      path,
		SnapshotInterval: time.Hour,
	}

	first, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("first manager: %v", err)
	}
	for i := 0; i < 3; i++ {
		first.Enforcer().Admit("alpha", 100)
	}
	// Close flushes the final snapshot.
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("second manager: %v", err)
	}
	defer second.Close()

	usage := second.Enforcer().Usage("alpha")
	if usage.DailyRequests != 3 {
		t.Errorf("restored daily requests = %d, want 3", usage.DailyRequests)
	}
	if usage.DailyBytes != 300 {
		t.Errorf("restored daily bytes = %d, want 300", usage.DailyBytes)
	}
	if usage.MonthlyRequests != 3 {
		t.Errorf("restored monthly requests = %d, want 3", usage.MonthlyRequests)
	}
}

func TestManager_RestoredUsageCountsAgainstQuota(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.db")
	cfg := config.LimitsConfig{
		Action:      "block",
		StoragePath: path,
		ByKey: map[string]config.QuotaLimits{
			"alpha": {DailyRequests: 2},
		},
	}

	first, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("first manager: %v", err)
	}
	first.Enforcer().Admit("alpha", 10)
	first.Enforcer().Admit("alpha", 10)
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("second manager: %v", err)
	}
	defer second.Close()

	if decision := second.Enforcer().Admit("alpha", 10); decision.Allowed {
		t.Fatalf("request admitted after restart despite exhausted quota: %+v", decision)
	}
}

func TestManager_ExplicitSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.db")

	m, err := NewManager(config.LimitsConfig{
		StoragePath:      path,
		SnapshotInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	defer m.Close()

	m.Enforcer().Admit("alpha", 42)
	if err := m.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatalf("opening store for verification: %v", err)
	}
	defer store.Close()

	persisted, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := persisted["alpha"]; !ok {
		t.Errorf("persisted keys = %v, want alpha present", keysOf(persisted))
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	m, err := NewManager(config.LimitsConfig{})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func keysOf(snapshot map[string]WindowStates) []string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	return keys
}
