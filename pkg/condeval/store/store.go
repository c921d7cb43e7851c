// Package store persists the S-expression projection of named conditions.
//
// Records are text snapshots for debugging and audit; there is no parser, so
// loading a record yields its text, not a condition tree.
package store

import (
	"errors"
	"time"
)

// Store persists condition records keyed by name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores rec under rec.Name.
	// Saving an existing name replaces the text and bumps Version.
	// Returns the stored record with Version and UpdatedAt filled in.
	Save(rec Record) (Record, error)

	// Load retrieves the record for name.
	// Returns ErrNotFound if it doesn't exist.
	Load(name string) (Record, error)

	// List returns all records ordered by name.
	// Returns an empty slice (not error) if the store is empty.
	List() ([]Record, error)

	// Delete removes the record for name.
	// Returns nil if it doesn't exist.
	Delete(name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is a persisted condition projection.
type Record struct {
	// ID identifies the registration that produced the record.
	ID string
	// Name is the host-chosen key.
	Name string
	// Sexp is the rendered S-expression of the condition.
	Sexp string
	// Version starts at 1 and increments on every Save of the same name.
	Version int
	// UpdatedAt is the time of the last Save, in UTC.
	UpdatedAt time.Time
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("condition record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("condition store closed")

	// ErrEmptyName indicates a record was saved without a name.
	ErrEmptyName = errors.New("condition record name is empty")
)
