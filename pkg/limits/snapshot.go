package limits

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SnapshotStore persists tracker state through SQLite so quota windows
// survive restarts. One row per key holds the serialized bucket states of
// both windows.
//
// The store uses a write-ahead log and a single connection; SQLite only
// supports one writer, and quota snapshots are low-frequency writes.
type SnapshotStore struct {
	db        *sql.DB
	dbPath    string
	done      chan struct{}
	mu        sync.Mutex
	closeOnce sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	cleanupStmt *sql.Stmt
}

const (
	// snapshotBusyTimeout is how long SQLite waits for locks.
	snapshotBusyTimeout = 5 * time.Second

	// walCheckpointInterval is how often the WAL is folded back into the
	// main database file.
	walCheckpointInterval = 5 * time.Minute

	// staleStateRetention drops persisted state for keys idle longer than
	// the monthly window; nothing in it could still count.
	staleStateRetention = monthlyWindow + 24*time.Hour
)

// NewSnapshotStore opens (creating if needed) the quota snapshot database.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("snapshot store path cannot be empty")
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		dbPath, int(snapshotBusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	// Single writer; keep one connection so WAL state stays coherent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SnapshotStore{
		db:     db,
		dbPath: dbPath,
		done:   make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare snapshot statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the snapshot table if it doesn't exist.
func (s *SnapshotStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quota_usage (
		key_name TEXT NOT NULL PRIMARY KEY,
		state TEXT NOT NULL,
		last_updated INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quota_last_updated ON quota_usage(last_updated);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SnapshotStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO quota_usage (key_name, state, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (key_name) DO UPDATE SET
			state = excluded.state,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT key_name, state FROM quota_usage
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM quota_usage WHERE last_updated < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Save persists the full tracker snapshot, one upsert per key.
func (s *SnapshotStore) Save(ctx context.Context, snapshot map[string]WindowStates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()

	for key, states := range snapshot {
		encoded, err := json.Marshal(states)
		if err != nil {
			return fmt.Errorf("failed to marshal state for key %q: %w", key, err)
		}

		if _, err := s.saveStmt.ExecContext(ctx, key, string(encoded), now); err != nil {
			return fmt.Errorf("failed to save state for key %q: %w", key, err)
		}
	}

	return nil
}

// Load retrieves every persisted key state.
func (s *SnapshotStore) Load(ctx context.Context) (map[string]WindowStates, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.loadStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]WindowStates)
	for rows.Next() {
		var key, encoded string
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var states WindowStates
		if err := json.Unmarshal([]byte(encoded), &states); err != nil {
			return nil, fmt.Errorf("failed to unmarshal state for key %q: %w", key, err)
		}

		snapshot[key] = states
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshot, nil
}

// Cleanup removes persisted state idle longer than olderThan and returns
// how many keys were dropped.
func (s *SnapshotStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup snapshot: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Close stops the checkpoint loop and releases the database.
// Close is idempotent.
func (s *SnapshotStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.loadStmt != nil {
			s.loadStmt.Close()
		}
		if s.cleanupStmt != nil {
			s.cleanupStmt.Close()
		}

		closeErr = s.db.Close()
	})

	return closeErr
}

// checkpointLoop periodically folds the WAL into the main database file
// and drops stale key state.
func (s *SnapshotStore) checkpointLoop() {
	ticker := time.NewTicker(walCheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			s.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), snapshotBusyTimeout)
			_, _ = s.Cleanup(ctx, time.Now().Add(-staleStateRetention))
			cancel()
		}
	}
}
