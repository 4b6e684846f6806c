// Package settings persists user preferences as JSON values in a local
// SQLite database so they survive restarts.
package settings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// Store is a durable key/value store. Values are serialized as JSON; a
// missing or unreadable value is never an error for callers, it resolves to
// the fallback they supply.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("settings: open database %q: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("settings: verify connection to %q: %w", path, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	q := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("settings: init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Set serializes value and durably stores it under key, replacing any prior
// value.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("settings: marshal %q: %w", key, err)
	}

	q := `
	INSERT OR REPLACE INTO settings (key, value)
	VALUES (?, ?);
	`
	if _, err := s.db.Exec(q, key, string(raw)); err != nil {
		return fmt.Errorf("settings: store %q: %w", key, err)
	}
	return nil
}

// Get reads the value stored under key into a T. Absent keys and values that
// fail to deserialize both yield the fallback; fallback is the only recovery
// path, readers never see an error.
func Get[T any](s *Store, key string, fallback T) T {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?;`, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("settings: read %q failed, using fallback: %v", key, err)
		}
		return fallback
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("settings: decode %q failed, using fallback: %v", key, err)
		return fallback
	}
	return out
}
