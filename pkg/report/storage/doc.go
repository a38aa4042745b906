// Package storage provides storage backends for trust reports.
//
// # Storage Backends
//
// The storage package implements the report.Storage interface twice:
//
//   - SQLite: Embedded database for single-node deployments
//   - Memory: In-memory storage for testing and ephemeral runs
//
// # SQLite Backend
//
// The SQLite backend provides durable storage with:
//
//   - WAL mode for concurrent reads/writes
//   - Indexes on frequently queried fields
//   - Connection pooling for concurrent access
//   - Busy timeout for handling locks
//
// # Basic Usage
//
//	// Create SQLite storage
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:         "data/reports.db",
//	    MaxOpenConns: 10,
//	    MaxIdleConns: 5,
//	    WALMode:      true,
//	    BusyTimeout:  5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Store a trust report
//	if err := store.Store(ctx, rep); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Query trust reports
//	query := &report.Query{
//	    StartTime: &startTime,
//	    EndTime:   &endTime,
//	    Method:    "external-classifier",
//	    Limit:     100,
//	}
//	reports, err := store.Query(ctx, query)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Both backends are safe for concurrent use:
//
//   - Store() can be called concurrently from multiple goroutines
//   - Query() can be called concurrently with Store()
//   - WAL mode enables concurrent readers and writers
//
// # Schema Migration
//
// The SQLite storage initializes the database schema on first use.
// Schema version is tracked in the schema_version table for future
// migrations.
package storage
