// Package sqlite keeps an offline cache of contests and leaderboards so the
// client can still show the last known standings when the API is unreachable.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/iudanet/fantasy11/internal/sqlitedb"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is the offline cache.
type Storage struct {
	db *sql.DB
}

// New opens the cache file at dbPath, creating it when needed.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations fs: %w", err)
	}
	db, err := sqlitedb.Open(ctx, dbPath, migrations)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
