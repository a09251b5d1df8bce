package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps every slot in a single key-value table. It is the
// backend of choice when all state should live in one file.
type SQLiteBackend struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteBackend opens (or creates) the database at path and ensures the
// slots table exists.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: initialize schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Load returns the stored value for a slot.
func (s *SQLiteBackend) Load(slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read slot %s: %w", slot, err)
	}
	return value, nil
}

// Save upserts the slot value.
func (s *SQLiteBackend) Save(slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		slot, data)
	if err != nil {
		return fmt.Errorf("storage: write slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a slot row if present.
func (s *SQLiteBackend) Delete(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM slots WHERE key = ?`, slot); err != nil {
		return fmt.Errorf("storage: delete slot %s: %w", slot, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
