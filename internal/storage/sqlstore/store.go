// Package sqlstore implements storage.Storage on top of database/sql.
//
// The SQL is written once with ? placeholders. A Dialect describes the
// few things that differ between backends: placeholder style and how the
// driver reports a UNIQUE constraint violation. Backend packages
// (sqlite, postgres) open the *sql.DB, run migrations and hand both to New.
package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/aanand-mishra/roster-api/internal/storage"
)

var _ storage.Storage = (*Store)(nil)

// Dialect captures the backend-specific behaviour the store relies on.
type Dialect struct {
	// Name is used in log lines and error messages.
	Name string

	// Numbered rewrites ? placeholders into $1, $2, ... before execution.
	Numbered bool

	// IsUniqueViolation reports whether err was raised by a UNIQUE
	// constraint.
	IsUniqueViolation func(err error) bool
}

// Options tunes the bulk insert path.
type Options struct {
	// AtomicBulk runs CreateStudents inside one transaction so that any
	// failure rolls back the whole batch.
	AtomicBulk bool

	// BulkConcurrency bounds concurrent inserts. Zero or negative means
	// unbounded.
	BulkConcurrency int
}

// Store is the database/sql implementation of storage.Storage.
// A *sql.DB is a connection pool and is safe for concurrent use, so a
// single Store is shared by every request handler.
type Store struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
}

// New wraps an open, migrated *sql.DB.
func New(db *sql.DB, dialect Dialect, opts Options) *Store {
	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect, opts: opts}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect name, e.g. "sqlite".
func (s *Store) Dialect() string {
	return s.dialect.Name
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
