package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to the metadata table on creation.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes if they do not exist yet.
// Uses a transaction so a partially created schema is never left behind.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"imports", createImportsTable},
		{"inheritance", createInheritanceTable},
		{"calls", createCallsTable},
		{"documents", createDocumentsTable},
		{"metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
		INSERT INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)
		ON CONFLICT(key) DO NOTHING`, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a database
// without a metadata table.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    file_path TEXT PRIMARY KEY,                  -- Relative, slash-separated path from the project root
    language TEXT NOT NULL,
    namespace TEXT NOT NULL DEFAULT '',          -- Package, namespace or module path
    line_count INTEGER NOT NULL DEFAULT 0,
    unsupported INTEGER NOT NULL DEFAULT 0,      -- Count of skipped constructs
    unresolved INTEGER NOT NULL DEFAULT 0,
    low_confidence INTEGER NOT NULL DEFAULT 0,
    run_id TEXT NOT NULL,                        -- Run that last wrote this file
    indexed_at TEXT NOT NULL                     -- ISO 8601
)
`

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
    file_path TEXT NOT NULL,
    qualified_name TEXT NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- class, method, function, field, ...
    visibility TEXT NOT NULL,
    signature TEXT NOT NULL DEFAULT '',
    doc_comment TEXT,                            -- NULL when the symbol has none
    container TEXT NOT NULL DEFAULT '',
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (file_path, qualified_name),
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createImportsTable = `
CREATE TABLE IF NOT EXISTS imports (
    file_path TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- Source order within the file
    imported_path TEXT NOT NULL,
    local_alias TEXT,
    imported_symbol TEXT,
    is_relative INTEGER NOT NULL DEFAULT 0,
    is_wildcard INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (file_path, position),
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createInheritanceTable = `
CREATE TABLE IF NOT EXISTS inheritance (
    file_path TEXT NOT NULL,
    child TEXT NOT NULL,
    parent TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- extends, implements
    PRIMARY KEY (file_path, child, parent),
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createCallsTable = `
CREATE TABLE IF NOT EXISTS calls (
    file_path TEXT NOT NULL,
    position INTEGER NOT NULL,                   -- Source order within the file
    caller TEXT NOT NULL,
    callee_expression TEXT NOT NULL,
    resolved_callee TEXT,                        -- NULL when unresolved
    call_type TEXT NOT NULL,
    argument_count INTEGER NOT NULL DEFAULT 0,
    confidence TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    PRIMARY KEY (file_path, position),
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
    file_path TEXT PRIMARY KEY,
    strategy TEXT NOT NULL,
    fallback TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    generated_at TEXT NOT NULL,
    FOREIGN KEY (file_path) REFERENCES files(file_path) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_symbols_qualified_name ON symbols(qualified_name)",
	"CREATE INDEX IF NOT EXISTS idx_symbols_container ON symbols(container)",
	"CREATE INDEX IF NOT EXISTS idx_inheritance_child ON inheritance(child)",
	"CREATE INDEX IF NOT EXISTS idx_inheritance_parent ON inheritance(parent)",
	"CREATE INDEX IF NOT EXISTS idx_calls_caller ON calls(caller)",
	"CREATE INDEX IF NOT EXISTS idx_calls_resolved_callee ON calls(resolved_callee)",
}
