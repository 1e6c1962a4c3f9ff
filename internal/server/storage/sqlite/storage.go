// Package sqlite is the dev server store on top of modernc SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/sqlitedb"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var _ storage.Storage = (*Storage)(nil)

// Storage implements storage.Storage.
type Storage struct {
	db *sql.DB
}

// New opens the database at dbPath and migrates it. Pass
// sqlitedb.Memory for a throwaway database.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	db, err := sqlitedb.Open(ctx, dbPath, migrations, sqlitedb.WithForeignKeys())
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the connection to tests.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Время хранится в миллисекундах UTC
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
