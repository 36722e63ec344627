package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// PreferenceStore is a durable string key-value table, the console's stand-in
// for browser local storage.
type PreferenceStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite file at path. ":memory:" keeps everything in process.
func Open(path string) (*PreferenceStore, error) {
	if path == "" {
		path = "useradmin.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases from splitting per connection
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &PreferenceStore{db: db}, nil
}

func (s *PreferenceStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO preferences (key, value) VALUES (?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value
    `, key, value)
	return err
}

func (s *PreferenceStore) Close() error {
	return s.db.Close()
}
