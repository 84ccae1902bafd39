// Package index provides SQLite-backed class persistence with optional FTS5 search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS classes (
	category       TEXT NOT NULL,
	name           TEXT NOT NULL,
	source         TEXT NOT NULL DEFAULT '',
	parent         TEXT NOT NULL DEFAULT '',
	inherits_from  TEXT NOT NULL DEFAULT '',
	is_simple      INTEGER NOT NULL DEFAULT 0,
	num_properties INTEGER NOT NULL DEFAULT 0,
	scope          INTEGER NOT NULL DEFAULT 0,
	model          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (category, name)
);

CREATE TABLE IF NOT EXISTS categories (
	name        TEXT PRIMARY KEY,
	header      TEXT NOT NULL DEFAULT '[]',
	class_count INTEGER NOT NULL DEFAULT 0,
	checksum    TEXT NOT NULL DEFAULT '',
	loaded_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_classes_inherits ON classes(category, inherits_from);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
