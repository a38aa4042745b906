package limits

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"veristone-hq/clarion/pkg/config"
)

// defaultSnapshotInterval is used when the configured interval is zero.
const defaultSnapshotInterval = 5 * time.Minute

// Manager assembles the quota subsystem: the usage tracker, the enforcer
// consulted by the quota middleware, and the snapshot loop that persists
// window state across restarts.
//
// Construction restores any persisted usage before the first request is
// admitted, so a restart does not reset quota windows.
type Manager struct {
	tracker  *Tracker
	enforcer *Enforcer
	store    *SnapshotStore
	interval time.Duration
	logger   *slog.Logger

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewManager builds the quota subsystem from its configuration section.
// An empty StoragePath disables persistence; usage then lives only in
// memory and resets on restart.
func NewManager(cfg config.LimitsConfig) (*Manager, error) {
	tracker := NewTracker()

	quotas := make(map[string]Quota, len(cfg.ByKey))
	for key, q := range cfg.ByKey {
		quotas[key] = Quota{
			DailyRequests:   q.DailyRequests,
			MonthlyRequests: q.MonthlyRequests,
			DailyBytes:      q.DailyBytes,
			MonthlyBytes:    q.MonthlyBytes,
		}
	}

	interval := cfg.SnapshotInterval
	if interval <= 0 {
		interval = defaultSnapshotInterval
	}

	m := &Manager{
		tracker:  tracker,
		enforcer: NewEnforcer(tracker, quotas, Action(cfg.Action)),
		interval: interval,
		logger:   slog.Default().With("component", "limits"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if cfg.StoragePath != "" {
		store, err := NewSnapshotStore(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open quota snapshot store: %w", err)
		}
		m.store = store

		if err := m.restore(); err != nil {
			store.Close()
			return nil, err
		}
	}

	go m.snapshotLoop()

	return m, nil
}

// Enforcer returns the admission gate consumed by the quota middleware.
func (m *Manager) Enforcer() *Enforcer {
	return m.enforcer
}

// WithObserver attaches quota telemetry recording. Call before serving.
func (m *Manager) WithObserver(observer Observer) *Manager {
	m.enforcer.WithObserver(observer)
	return m
}

// Snapshot flushes the current tracker state to the store immediately.
// A no-op without persistence.
func (m *Manager) Snapshot(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(ctx, m.tracker.Snapshot())
}

// Close stops the snapshot loop, flushes a final snapshot, and releases
// the store. Close is idempotent.
func (m *Manager) Close() error {
	var closeErr error

	m.closeOnce.Do(func() {
		close(m.stopCh)
		<-m.doneCh

		if m.store == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.store.Save(ctx, m.tracker.Snapshot()); err != nil {
			m.logger.Error("final quota snapshot failed", "error", err)
		}
		closeErr = m.store.Close()
	})

	return closeErr
}

// restore loads persisted window state into the tracker.
func (m *Manager) restore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore quota state: %w", err)
	}

	if len(snapshot) > 0 {
		m.tracker.Restore(snapshot)
		m.logger.Info("quota state restored", "keys", len(snapshot))
	}
	return nil
}

// snapshotLoop periodically persists the tracker state. Failures are
// logged and retried on the next tick; quota enforcement itself never
// depends on a snapshot succeeding.
func (m *Manager) snapshotLoop() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if m.store == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := m.store.Save(ctx, m.tracker.Snapshot()); err != nil {
				m.logger.Error("quota snapshot failed", "error", err)
			}
			cancel()
		}
	}
}
