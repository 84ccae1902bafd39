//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS classes_fts USING fts5(
			category UNINDEXED,
			name,
			source,
			model,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, row ClassRow) error {
	_, err := tx.Exec(`INSERT INTO classes_fts (category, name, source, model) VALUES (?, ?, ?, ?)`,
		row.Category, row.Name, row.Source, row.Model)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteCategory(tx *sql.Tx, category string) error {
	_, err := tx.Exec(`DELETE FROM classes_fts WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("index: clear fts category: %w", err)
	}
	return nil
}

func ftsDeleteClass(tx *sql.Tx, category, name string) error {
	_, err := tx.Exec(`DELETE FROM classes_fts WHERE category = ? AND name = ?`, category, name)
	if err != nil {
		return fmt.Errorf("index: clear fts class: %w", err)
	}
	return nil
}

// Search performs an FTS5 search over class names, sources, and model paths.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT category,
		       name,
		       model,
		       snippet(classes_fts, 3, '<b>', '</b>', '...', 32)
		FROM classes_fts
		WHERE classes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Category, &r.Name, &r.Model, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
