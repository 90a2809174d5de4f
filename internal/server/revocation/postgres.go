package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/dbx"
)

// PostgresStore persists revocation records in the revoked_tokens table so
// revocations survive a restart. Expired rows for a token are deleted when
// that token is queried, mirroring the memory store's lazy eviction.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" || expiresAt.IsZero() {
		return common.ErrInvalidArgument
	}

	query := `
		INSERT INTO revoked_tokens (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *PostgresStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, common.ErrInvalidArgument
	}

	purge := `
		DELETE FROM revoked_tokens
		WHERE token = $1 AND expires_at <= now()
	`
	if _, err := s.db.ExecContext(ctx, purge, token); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens WHERE token = $1
		)
	`
	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return revoked, nil
}
