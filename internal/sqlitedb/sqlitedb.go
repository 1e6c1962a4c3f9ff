// Package sqlitedb opens modernc SQLite databases and brings their schema
// up to date with goose. Both the dev server store and the client cache
// are built on it.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // регистрирует драйвер "sqlite"
)

// Memory is the DSN of a private in-memory database.
const Memory = ":memory:"

var basePragmas = []string{
	"journal_mode = WAL",
	"synchronous = NORMAL",
	"busy_timeout = 5000",
}

// Option tunes Open.
type Option func(*options)

type options struct {
	pragmas []string
}

// WithForeignKeys turns on FOREIGN KEY enforcement for the connection.
func WithForeignKeys() Option {
	return func(o *options) { o.pragmas = append(o.pragmas, "foreign_keys = ON") }
}

// Open connects to path, applies the pragmas and runs every pending
// migration found at the root of migrations. The pool holds a single
// connection: an in-memory database lives inside its connection and
// SQLite allows one writer anyway.
func Open(ctx context.Context, path string, migrations fs.FS, opts ...Option) (*sql.DB, error) {
	o := options{pragmas: append([]string(nil), basePragmas...)}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(ctx, db, o.pragmas, migrations); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return db, nil
}

func prepare(ctx context.Context, db *sql.DB, pragmas []string, migrations fs.FS) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}

	// Provider вместо глобального goose: у клиента и сервера свои наборы миграций
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports a UNIQUE or PRIMARY KEY conflict from the driver.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
