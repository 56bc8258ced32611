// Package sqlite stores the tracker's run history in a SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStorage implements the history store using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New opens (creating if needed) the history database at path.
func New(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// dsn builds a file URI with WAL journaling and a busy timeout, so that the
// status and history commands can read while a run is writing.
func dsn(path string) string {
	return "file:" + filepath.ToSlash(path) + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
