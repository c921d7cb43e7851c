package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite store.
// The path should be a file path (e.g., "./conditions.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database exists per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS conditions (
			name TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			sexp TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(rec Record) (Record, error) {
	if rec.Name == "" {
		return Record{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	rec.UpdatedAt = time.Now().UTC()
	err := s.db.QueryRow(`
		INSERT INTO conditions (name, id, sexp, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			sexp = excluded.sexp,
			version = conditions.version + 1,
			updated_at = excluded.updated_at
		RETURNING version
	`, rec.Name, rec.ID, rec.Sexp, rec.UpdatedAt.Format(time.RFC3339Nano)).Scan(&rec.Version)
	if err != nil {
		return Record{}, fmt.Errorf("save condition: %w", err)
	}
	return rec, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	rec := Record{Name: name}
	var updatedAt string
	err := s.db.QueryRow(`
		SELECT id, sexp, version, updated_at FROM conditions
		WHERE name = ?
	`, name).Scan(&rec.ID, &rec.Sexp, &rec.Version, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load condition: %w", err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return rec, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT name, id, sexp, version, updated_at
		FROM conditions
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var updatedAt string
		if err := rows.Scan(&rec.Name, &rec.ID, &rec.Sexp, &rec.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}

	return records, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM conditions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
