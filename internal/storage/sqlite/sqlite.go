// Package sqlite provides the SQLite backend of storage.Storage.
//
// SQLite stores everything in a single file on disk: no network, no
// separate server process, nothing to install beyond the driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/roster-api/internal/config"
	"github.com/aanand-mishra/roster-api/internal/storage/migrations"
	"github.com/aanand-mishra/roster-api/internal/storage/sqlstore"
)

// Dialect is the sqlstore dialect for mattn/go-sqlite3.
var Dialect = sqlstore.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// New opens the SQLite database at cfg.Storage.Path, applies the
// migrations and returns a ready-to-use store.
func New(cfg *config.Config) (*sqlstore.Store, error) {
	return Open(context.Background(), cfg.Storage.Path, sqlstore.Options{
		AtomicBulk:      cfg.Storage.AtomicBulk,
		BulkConcurrency: cfg.Storage.BulkConcurrency,
	})
}

// Open is New without the config dependency.
func Open(ctx context.Context, path string, opts sqlstore.Options) (*sqlstore.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet; it only validates the
	// driver name and DSN. The first connection happens on the first query.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows a single writer. Funnelling every statement through
	// one connection turns lock contention into pool waits.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	return sqlstore.New(db, Dialect, opts), nil
}
