package limits

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestSnapshotStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "limits.db"))
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot(base time.Time) map[string]WindowStates {
	return map[string]WindowStates{
		"alpha": {
			Daily: []BucketState{
				{Timestamp: base.Unix(), Requests: 3, Bytes: 300},
				{Timestamp: base.Add(time.Hour).Unix(), Requests: 1, Bytes: 50},
			},
			Monthly: []BucketState{
				{Timestamp: base.Truncate(24 * time.Hour).Unix(), Requests: 4, Bytes: 350},
			},
		},
		"beta": {
			Daily: []BucketState{
				{Timestamp: base.Unix(), Requests: 9, Bytes: 0},
			},
			Monthly: []BucketState{
				{Timestamp: base.Truncate(24 * time.Hour).Unix(), Requests: 9, Bytes: 0},
			},
		},
	}
}

func TestSnapshotStore_EmptyPath(t *testing.T) {
	if _, err := NewSnapshotStore(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := newTestSnapshotStore(t)

	snapshot, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot) != 0 {
		t.Errorf("fresh store loaded %d keys, want 0", len(snapshot))
	}
}

func TestSnapshotStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestSnapshotStore(t)
	want := sampleSnapshot(time.Now().Truncate(time.Hour))

	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_SaveOverwritesKey(t *testing.T) {
	store := newTestSnapshotStore(t)
	base := time.Now().Truncate(time.Hour)

	first := map[string]WindowStates{
		"alpha": {
			Daily:   []BucketState{{Timestamp: base.Unix(), Requests: 1, Bytes: 10}},
			Monthly: []BucketState{{Timestamp: base.Unix(), Requests: 1, Bytes: 10}},
		},
	}
	second := map[string]WindowStates{
		"alpha": {
			Daily:   []BucketState{{Timestamp: base.Unix(), Requests: 5, Bytes: 500}},
			Monthly: []BucketState{{Timestamp: base.Unix(), Requests: 5, Bytes: 500}},
		},
	}

	if err := store.Save(context.Background(), first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(context.Background(), second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.db")
	want := sampleSnapshot(time.Now().Truncate(time.Hour))

	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatalf("reopening snapshot store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch after reopen (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_Cleanup(t *testing.T) {
	store := newTestSnapshotStore(t)
	snapshot := sampleSnapshot(time.Now().Truncate(time.Hour))

	if err := store.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Nothing is older than an hour ago.
	deleted, err := store.Cleanup(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 for a cutoff in the past", deleted)
	}

	// Everything is older than an hour from now.
	deleted, err = store.Cleanup(context.Background(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != len(snapshot) {
		t.Errorf("deleted = %d, want %d", deleted, len(snapshot))
	}

	remaining, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("loaded %d keys after cleanup, want 0", len(remaining))
	}
}

func TestSnapshotStore_CloseIdempotent(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "limits.db"))
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestSnapshotStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "limits.db")

	store, err := NewSnapshotStore(path)
	if err != nil {
		t.Fatalf("opening snapshot store with nested path: %v", err)
	}
	defer store.Close()

	if err := store.Save(context.Background(), sampleSnapshot(time.Now())); err != nil {
		t.Errorf("save into nested path: %v", err)
	}
}
