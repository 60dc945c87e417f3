// Package postgres provides the Postgres backend of storage.Storage using
// the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/aanand-mishra/roster-api/internal/config"
	"github.com/aanand-mishra/roster-api/internal/storage/migrations"
	"github.com/aanand-mishra/roster-api/internal/storage/sqlstore"
)

// Dialect is the sqlstore dialect for pgx.
var Dialect = sqlstore.Dialect{
	Name:              "postgres",
	Numbered:          true,
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// New connects to cfg.Storage.DSN, applies the migrations and returns a
// ready-to-use store.
func New(cfg *config.Config) (*sqlstore.Store, error) {
	return Open(context.Background(), cfg.Storage.DSN, sqlstore.Options{
		AtomicBulk:      cfg.Storage.AtomicBulk,
		BulkConcurrency: cfg.Storage.BulkConcurrency,
	})
}

// Open is New without the config dependency.
func Open(ctx context.Context, dsn string, opts sqlstore.Options) (*sqlstore.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if err := migrations.Up(ctx, db, migrations.Postgres); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return sqlstore.New(db, Dialect, opts), nil
}
