package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteKV keeps keys in a single-table SQLite database.
type SQLiteKV struct {
	db *sql.DB
}

const kvSchema = `
CREATE TABLE IF NOT EXISTS client_storage (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);`

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLiteKV, error) {
	if path == "" {
		path = filepath.Join(filepath.Dir(DefaultPath()), "storage.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return initSQLite(db)
}

// OpenSQLiteMemory creates an in-memory database (tests).
func OpenSQLiteMemory() (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// every new connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)
	return initSQLite(db)
}

func initSQLite(db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM client_storage WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO client_storage (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM client_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Close() error { return s.db.Close() }
