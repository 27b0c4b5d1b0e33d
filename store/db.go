package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the metadata database and applies the
// connection pragmas the indexer writes with, so readers and the indexer
// can share the file.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return db, nil
}

// Migrate creates the schema when missing and upgrades older databases in
// place. Safe to run on every open.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS DESCRIPTION (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			keywords_json TEXT NULL,
			created_at_utc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS IMAGE_METADATA (
			hash TEXT PRIMARY KEY,
			size_bytes INTEGER NOT NULL,
			res_w INTEGER NULL,
			res_h INTEGER NULL,
			thumbnail BLOB NULL,
			description_fk INTEGER NULL,
			FOREIGN KEY (description_fk) REFERENCES DESCRIPTION(id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Databases written before thumbnails were stored inline lack the
	// column; add it rather than forcing a re-index.
	hasThumb, err := columnExists(db, "IMAGE_METADATA", "thumbnail")
	if err != nil {
		return err
	}
	if !hasThumb {
		if _, err := db.Exec("ALTER TABLE IMAGE_METADATA ADD COLUMN thumbnail BLOB NULL"); err != nil {
			return fmt.Errorf("add thumbnail column: %w", err)
		}
	}

	stmts = []string{
		`CREATE TABLE IF NOT EXISTS IMAGE_FILE (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			hash TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at_utc TEXT NOT NULL,
			modified_at_utc TEXT NOT NULL,
			FOREIGN KEY (hash) REFERENCES IMAGE_METADATA(hash)
		)`,
		"CREATE INDEX IF NOT EXISTS idx_image_file_hash ON IMAGE_FILE(hash)",
		"CREATE INDEX IF NOT EXISTS idx_image_metadata_desc ON IMAGE_METADATA(description_fk)",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
