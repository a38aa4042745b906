package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the report archive schema.
const Schema = `
-- Trust reports table
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,

    -- Content identity and metadata
    digest TEXT NOT NULL,
    filename TEXT,
    mime_type TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    source TEXT NOT NULL,
    format TEXT,

    -- Scoring outcome
    composite_score REAL NOT NULL,
    method TEXT NOT NULL,
    breakdown TEXT,

    -- Full analysis payloads (JSON)
    features TEXT,
    signals TEXT,

    processed_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_reports_processed_at ON reports(processed_at);
CREATE INDEX IF NOT EXISTS idx_reports_digest ON reports(digest);
CREATE INDEX IF NOT EXISTS idx_reports_method ON reports(method);
CREATE INDEX IF NOT EXISTS idx_reports_format ON reports(format);
CREATE INDEX IF NOT EXISTS idx_reports_composite_score ON reports(composite_score);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
