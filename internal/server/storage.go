package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/authgate/internal/server/config"
	"github.com/example/authgate/internal/server/migrations"
	"github.com/example/authgate/internal/server/revocation"
	"github.com/example/authgate/internal/server/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Storage bundles the stores behind the configured adapter.
type Storage struct {
	Users   users.Repository
	Revoked revocation.Store

	// Memory is non-nil for the memory adapter and owns the sweep loop.
	Memory *revocation.MemoryStore

	db *sql.DB
}

// OpenStorage constructs the stores selected by cfg.StorageAdapter. The
// postgres adapter opens the database and applies migrations; the memory
// adapter keeps everything in process.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageAdapter {
	case "memory":
		memory := revocation.NewMemoryStore(cfg.SweepInterval)
		return &Storage{
			Users:   users.NewMemoryRepository(),
			Revoked: memory,
			Memory:  memory,
		}, nil

	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}

		if err := runMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}

		return &Storage{
			Users:   users.NewPostgresRepository(db),
			Revoked: revocation.NewPostgresStore(db),
			db:      db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage adapter: %s (supported: memory, postgres)", cfg.StorageAdapter)
	}
}

// Close releases the database connection when one is open.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
