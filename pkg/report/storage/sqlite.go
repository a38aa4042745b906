package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/report"
)

// SQLiteConfig contains configuration for the SQLite archive backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/reports.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the report.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite archive backend. It initializes the
// schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "report.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("report archive initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return report.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return report.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return report.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return report.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return report.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return report.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a trust report.
func (s *SQLiteStorage) Store(ctx context.Context, r *report.TrustReport) error {
	breakdown, _ := json.Marshal(r.Breakdown)
	features, _ := json.Marshal(r.Features)
	signals, _ := json.Marshal(r.Signals)

	query := `
		INSERT OR REPLACE INTO reports (
			id,
			digest, filename, mime_type, size_bytes, source, format,
			composite_score, method, breakdown,
			features, signals,
			processed_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Metadata.Digest, r.Metadata.Filename, r.Metadata.MIMEType, r.Metadata.SizeBytes, r.Metadata.Source, string(r.Features.Format),
		r.CompositeScore, r.Method, string(breakdown),
		string(features), string(signals),
		r.ProcessedAt,
	)
	if err != nil {
		return report.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Get retrieves a single report by ID.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*report.TrustReport, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM reports WHERE id = ? LIMIT 1", id)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, report.NewStorageError("sqlite", "get", err)
		}
		return nil, report.ErrNotFound
	}

	record, err := s.scanRow(rows)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "scan", err)
	}
	return record, nil
}

// Query retrieves reports matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *report.Query) ([]*report.TrustReport, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT * FROM reports"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY " + sortClause(query)

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
		if query.Offset > 0 {
			sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*report.TrustReport{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, report.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, report.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of reports matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *report.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM reports"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, report.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes reports matching the query filters and returns how many
// were removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *report.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM reports"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, report.NewStorageError("sqlite", "delete", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, report.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return report.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("report archive closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters. Returns the
// clause (without the "WHERE" keyword) and the query arguments.
func buildWhereClause(query *report.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "processed_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "processed_at <= ?")
		args = append(args, *query.EndTime)
	}

	if query.Digest != "" {
		conditions = append(conditions, "digest = ?")
		args = append(args, query.Digest)
	}
	if query.Method != "" {
		conditions = append(conditions, "method = ?")
		args = append(args, query.Method)
	}
	if query.Format != "" {
		conditions = append(conditions, "format = ?")
		args = append(args, query.Format)
	}
	if query.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, query.Source)
	}

	if query.MinScore != nil {
		conditions = append(conditions, "composite_score >= ?")
		args = append(args, *query.MinScore)
	}
	if query.MaxScore != nil {
		conditions = append(conditions, "composite_score <= ?")
		args = append(args, *query.MaxScore)
	}

	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}
	return whereClause, args
}

// sortClause maps the query's sort parameters onto known columns. Anything
// unrecognized falls back to newest-first, which also keeps user-supplied
// sort values out of the SQL text.
func sortClause(query *report.Query) string {
	column := "processed_at"
	if query.SortBy == "composite_score" {
		column = "composite_score"
	}
	order := "DESC"
	if query.SortOrder == "asc" {
		order = "ASC"
	}
	return column + " " + order
}

// scanRow scans a database row into a TrustReport.
func (s *SQLiteStorage) scanRow(rows *sql.Rows) (*report.TrustReport, error) {
	var r report.TrustReport
	var filename sql.NullString
	var format string
	var breakdown, features, signals string

	err := rows.Scan(
		&r.ID,
		&r.Metadata.Digest, &filename, &r.Metadata.MIMEType, &r.Metadata.SizeBytes, &r.Metadata.Source, &format,
		&r.CompositeScore, &r.Method, &breakdown,
		&features, &signals,
		&r.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	if filename.Valid {
		r.Metadata.Filename = filename.String
	}
	if breakdown != "" {
		json.Unmarshal([]byte(breakdown), &r.Breakdown)
	}
	if features != "" {
		json.Unmarshal([]byte(features), &r.Features)
	}
	if signals != "" {
		json.Unmarshal([]byte(signals), &r.Signals)
	}
	if r.Signals == nil {
		r.Signals = []classify.Signal{}
	}
	if r.Features.Format == "" {
		r.Features.Format = analysis.Format(format)
	}
	r.ProcessedAt = r.ProcessedAt.UTC()

	return &r, nil
}
