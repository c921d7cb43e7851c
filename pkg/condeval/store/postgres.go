package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // migrate driver for postgres:// URLs
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists records to PostgreSQL.
// It is suitable for deployments where several processes share one catalog.
type PostgresStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewPostgresStore connects to the database at dsn, applies pending schema
// migrations and returns the store. The dsn must be a postgres:// URL.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if err := migrateUp(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func migrateUp(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *PostgresStore) Save(rec Record) (Record, error) {
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
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (name) DO UPDATE SET
			id = EXCLUDED.id,
			sexp = EXCLUDED.sexp,
			version = conditions.version + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING version
	`, rec.Name, rec.ID, rec.Sexp, rec.UpdatedAt).Scan(&rec.Version)
	if err != nil {
		return Record{}, fmt.Errorf("save condition: %w", err)
	}
	return rec, nil
}

// Load implements Store.
func (s *PostgresStore) Load(name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Record{}, ErrStoreClosed
	}

	rec := Record{Name: name}
	err := s.db.QueryRow(`
		SELECT id, sexp, version, updated_at FROM conditions
		WHERE name = $1
	`, name).Scan(&rec.ID, &rec.Sexp, &rec.Version, &rec.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load condition: %w", err)
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// List implements Store.
func (s *PostgresStore) List() ([]Record, error) {
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
		if err := rows.Scan(&rec.Name, &rec.ID, &rec.Sexp, &rec.Version, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		rec.UpdatedAt = rec.UpdatedAt.UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conditions: %w", err)
	}

	return records, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM conditions WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
