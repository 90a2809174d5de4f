package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/example/authgate/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func uniqueViolation(constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func TestPostgresCreate_CommitsUserAndRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@test.ru", "hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs(sqlmock.AnyArg(), RoleGuest).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), &User{
		Login:        "alice",
		Email:        "alice@test.ru",
		PasswordHash: "hash-1",
		Roles:        []string{RoleGuest},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected a generated id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_UniqueViolationRollsBack(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"login taken", "users_login_key", common.ErrLoginTaken},
		{"email taken", "users_email_key", common.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectBegin()
			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(uniqueViolation(tt.constraint))
			mock.ExpectRollback()

			_, err := repo.Create(context.Background(), &User{
				Login: "alice", Email: "alice@test.ru", PasswordHash: "h",
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresGetByLogin_LoadsRoles(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, login, email, password_hash`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "email", "password_hash"}).
			AddRow("id-7", "bob", "bob@test.ru", "h"))
	mock.ExpectQuery(`SELECT r.name`).
		WithArgs("id-7").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow(RoleAdmin).
			AddRow(RoleGuest))

	got, err := repo.GetByLogin(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.ID != "id-7" || len(got.Roles) != 2 {
		t.Fatalf("unexpected user: %+v", got)
	}
	if !got.HasRole(RoleAdmin) || !got.HasRole(RoleGuest) {
		t.Fatalf("roles not loaded: %v", got.Roles)
	}
}

func TestPostgresGetByLogin_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, login, email, password_hash`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostgresAssignRole_UnknownRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	// Zero rows and no such role: the insert-select found nothing to insert.
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("id-7", "SUPERVISOR").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("SUPERVISOR").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.AssignRole(context.Background(), "id-7", "SUPERVISOR")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostgresAssignRole_AlreadyAssigned(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	// Zero rows but the role exists: the assignment hit ON CONFLICT.
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("id-7", RoleGuest).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(RoleGuest).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.AssignRole(context.Background(), "id-7", RoleGuest); err != nil {
		t.Fatalf("AssignRole error: %v", err)
	}
}

func Test_translateUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"login constraint", uniqueViolation("users_login_key"), common.ErrLoginTaken},
		{"email constraint", uniqueViolation("users_email_key"), common.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateUniqueViolation(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("other constraints pass through wrapped", func(t *testing.T) {
		orig := uniqueViolation("user_roles_pkey")
		got := translateUniqueViolation(orig)
		if errors.Is(got, common.ErrLoginTaken) || errors.Is(got, common.ErrEmailTaken) {
			t.Fatalf("unexpected sentinel: %v", got)
		}
		var pgErr *pgconn.PgError
		if !errors.As(got, &pgErr) {
			t.Fatalf("original error lost: %v", got)
		}
	})

	t.Run("non-postgres errors pass through wrapped", func(t *testing.T) {
		orig := errors.New("connection reset")
		got := translateUniqueViolation(orig)
		if !errors.Is(got, orig) {
			t.Fatalf("original error lost: %v", got)
		}
	})
}
