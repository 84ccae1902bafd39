package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/eihwaz/internal/apperr"
	"github.com/starford/eihwaz/internal/models"
)

// ClassRow represents a row in the classes table.
type ClassRow struct {
	Category       string
	Name           string
	Source         string
	Parent         string
	InheritsFrom   string
	IsSimpleObject bool
	NumProperties  int
	Scope          int
	Model          string
}

// CategoryRow represents a row in the categories table.
type CategoryRow struct {
	Name       string
	Header     []string
	ClassCount int
	Checksum   string
	LoadedAt   time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Category string
	Name     string
	Model    string
	Snippet  string
}

// RowFromRecord converts a decoded record into its persisted form.
func RowFromRecord(category string, r models.Record) ClassRow {
	return ClassRow{
		Category:       category,
		Name:           r.Name,
		Source:         r.Source,
		Parent:         r.Parent,
		InheritsFrom:   r.InheritsFrom,
		IsSimpleObject: r.IsSimpleObject,
		NumProperties:  r.NumProperties,
		Scope:          r.Scope,
		Model:          r.Model,
	}
}

// ReplaceCategory replaces a category's classes, FTS entries, and metadata
// row within a single transaction, so readers never observe a half-synced
// category.
func (db *DB) ReplaceCategory(cat CategoryRow, rows []ClassRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM classes WHERE category = ?`, cat.Name); err != nil {
		return fmt.Errorf("index: clear category: %w", err)
	}
	if err := ftsDeleteCategory(tx, cat.Name); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO classes (category, name, source, parent, inherits_from, is_simple, num_properties, scope, model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare class insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.Category, row.Name, row.Source, row.Parent, row.InheritsFrom,
			row.IsSimpleObject, row.NumProperties, row.Scope, row.Model); err != nil {
			return fmt.Errorf("index: insert class %s: %w", row.Name, err)
		}
		if err := ftsInsert(tx, row); err != nil {
			return err
		}
	}

	headerJSON, _ := json.Marshal(cat.Header)
	_, err = tx.Exec(`
		INSERT INTO categories (name, header, class_count, checksum, loaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			header      = excluded.header,
			class_count = excluded.class_count,
			checksum    = excluded.checksum,
			loaded_at   = excluded.loaded_at
	`, cat.Name, string(headerJSON), len(rows), cat.Checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert category: %w", err)
	}

	return tx.Commit()
}

// UpsertClass inserts or replaces one class row and its FTS entry.
func (db *DB) UpsertClass(row ClassRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDeleteClass(tx, row.Category, row.Name); err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO classes (category, name, source, parent, inherits_from, is_simple, num_properties, scope, model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(category, name) DO UPDATE SET
			source         = excluded.source,
			parent         = excluded.parent,
			inherits_from  = excluded.inherits_from,
			is_simple      = excluded.is_simple,
			num_properties = excluded.num_properties,
			scope          = excluded.scope,
			model          = excluded.model
	`, row.Category, row.Name, row.Source, row.Parent, row.InheritsFrom,
		row.IsSimpleObject, row.NumProperties, row.Scope, row.Model)
	if err != nil {
		return fmt.Errorf("index: upsert class %s: %w", row.Name, err)
	}
	if err := ftsInsert(tx, row); err != nil {
		return err
	}
	_, _ = tx.Exec(`UPDATE categories SET class_count = (SELECT count(*) FROM classes WHERE category = ?) WHERE name = ?`,
		row.Category, row.Category)

	return tx.Commit()
}

// DeleteCategory removes a category's classes, FTS entries, and metadata.
func (db *DB) DeleteCategory(category string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDeleteCategory(tx, category); err != nil {
		return err
	}
	_, _ = tx.Exec(`DELETE FROM classes WHERE category = ?`, category)
	_, _ = tx.Exec(`DELETE FROM categories WHERE name = ?`, category)

	return tx.Commit()
}

// GetClass returns one persisted class row.
func (db *DB) GetClass(category, name string) (*ClassRow, error) {
	row := db.conn.QueryRow(`
		SELECT category, name, source, parent, inherits_from, is_simple, num_properties, scope, model
		FROM classes WHERE category = ? AND name = ?
	`, category, name)

	var c ClassRow
	err := row.Scan(&c.Category, &c.Name, &c.Source, &c.Parent, &c.InheritsFrom,
		&c.IsSimpleObject, &c.NumProperties, &c.Scope, &c.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get class: %w", err)
	}
	return &c, nil
}

// ListClasses returns one page of a category's classes ordered by name,
// plus the total count.
func (db *DB) ListClasses(category string, limit, offset int) ([]ClassRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM classes WHERE category = ?`, category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count classes: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT category, name, source, parent, inherits_from, is_simple, num_properties, scope, model
		FROM classes WHERE category = ?
		ORDER BY name
		LIMIT ? OFFSET ?
	`, category, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list classes: %w", err)
	}
	defer rows.Close()

	var out []ClassRow
	for rows.Next() {
		var c ClassRow
		if err := rows.Scan(&c.Category, &c.Name, &c.Source, &c.Parent, &c.InheritsFrom,
			&c.IsSimpleObject, &c.NumProperties, &c.Scope, &c.Model); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Categories returns every persisted category ordered by name.
func (db *DB) Categories() ([]CategoryRow, error) {
	rows, err := db.conn.Query(`SELECT name, header, class_count, checksum, loaded_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("index: categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		var headerJSON string
		if err := rows.Scan(&c.Name, &headerJSON, &c.ClassCount, &c.Checksum, &c.LoadedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(headerJSON), &c.Header)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetChecksum returns the stored source checksum for a category, or empty
// string if the category is not persisted.
func (db *DB) GetChecksum(category string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM categories WHERE name = ?`, category).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}
