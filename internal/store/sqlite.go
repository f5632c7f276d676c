// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps all keys in one SQLite database. SQLite's own locking
// replaces the file backend's flock.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates a SQLite-backed store at dir/storage.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "storage.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}

	// Single connection: the modernc driver serializes writes per connection
	// and this store sees no concurrent statement load.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			name  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize storage schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under name, or ErrNotFound.
func (s *SQLiteStore) Get(name string) (string, error) {
	if err := validateKey(name); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return value, nil
}

// Set stores value under name, replacing any previous value.
func (s *SQLiteStore) Set(name, value string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO kv (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Delete removes name. Absent keys are ignored.
func (s *SQLiteStore) Delete(name string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM kv WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
