package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/dbx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository stores users, roles and their assignments in PostgreSQL.
// Login/email uniqueness is enforced by unique constraints; violations are
// translated into the domain sentinels.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the user row and its initial role assignments in one
// transaction, so a registered user is never visible without roles.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO users (id, login, email, password_hash)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, stored.ID, stored.Login, stored.Email, stored.PasswordHash); err != nil {
			return translateUniqueViolation(err)
		}

		for _, role := range stored.Roles {
			if err := assignRole(ctx, tx, stored.ID, role); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	return r.getBy(ctx, "login", login)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT id, login, email, password_hash
		FROM users
		WHERE %s = $1
	`, column)

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Login, &user.Email, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	roles, err := r.rolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return user, nil
}

func (r *PostgresRepository) rolesOf(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

func (r *PostgresRepository) AssignRole(ctx context.Context, userID, role string) error {
	return assignRole(ctx, r.db, userID, role)
}

func assignRole(ctx context.Context, db dbx.DBTX, userID, role string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING
	`

	res, err := db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	// Zero rows with no conflict means the role itself does not exist.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		exists, eerr := roleExists(ctx, db, role)
		if eerr != nil {
			return eerr
		}
		if !exists {
			return common.ErrNotFound
		}
	}

	return nil
}

func (r *PostgresRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	return roleExists(ctx, r.db, name)
}

func roleExists(ctx context.Context, db dbx.DBTX, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`
	if err := db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreateRole(ctx context.Context, name string) error {
	if name == "" {
		return common.ErrInvalidArgument
	}

	query := `
		INSERT INTO roles (name)
		VALUES ($1)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// translateUniqueViolation maps a unique-constraint violation on the users
// table to the matching domain sentinel.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "login"):
			return common.ErrLoginTaken
		case strings.Contains(pgErr.ConstraintName, "email"):
			return common.ErrEmailTaken
		}
	}
	return fmt.Errorf("db error: %w", err)
}
