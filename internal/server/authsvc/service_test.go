package authsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/logging"
	"github.com/example/authgate/internal/server/revocation"
	"github.com/example/authgate/internal/server/token"
	"github.com/example/authgate/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Verify(password, hash string) bool    { return "h:"+password == hash }

// failingRepo forces the internal-error paths.
type failingRepo struct {
	users.Repository
	err error
}

func (f *failingRepo) Create(context.Context, *users.User) (*users.User, error) {
	return nil, f.err
}
func (f *failingRepo) GetByLogin(context.Context, string) (*users.User, error) {
	return nil, f.err
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T) (*Service, *revocation.MemoryStore) {
	t.Helper()

	repo := users.NewMemoryRepository()
	for _, role := range users.SeedRoles {
		require.NoError(t, repo.CreateRole(context.Background(), role))
	}

	revoked := revocation.NewMemoryStore(0)
	codec := token.NewCodec([]byte("test-secret"))

	return NewService(repo, plainHasher{}, codec, revoked, time.Hour, testLogger()), revoked
}

func TestRegister_AssignsDefaultRole(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "pw123", "alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, []string{users.RoleGuest}, user.Roles)
	assert.NotEqual(t, "pw123", user.PasswordHash, "plaintext must never be stored")
}

func TestRegister_TakenLoginAndEmail(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw123", "alice@x.com")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "other", "new@x.com")
	assert.ErrorIs(t, err, common.ErrLoginTaken)

	_, err = s.Register(ctx, "alice2", "other", "alice@x.com")
	assert.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	for _, tc := range [][3]string{
		{"", "pw", "a@x.com"},
		{"a", "", "a@x.com"},
		{"a", "pw", ""},
	} {
		_, err := s.Register(ctx, tc[0], tc[1], tc[2])
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	}
}

func TestRegister_RepositoryFailureIsInternal(t *testing.T) {
	t.Parallel()

	s := NewService(&failingRepo{err: errors.New("db down")}, plainHasher{},
		token.NewCodec([]byte("k")), revocation.NewMemoryStore(0), time.Hour, testLogger())

	_, err := s.Register(context.Background(), "a", "pw", "a@x.com")
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw123", "alice@x.com")
	require.NoError(t, err)

	minted, err := s.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, minted)

	subject, err := token.NewCodec([]byte("test-secret")).Subject(minted)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestAuthenticate_Undifferentiated(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw123", "alice@x.com")
	require.NoError(t, err)

	_, wrongPw := s.Authenticate(ctx, "alice", "wrongpw")
	_, ghost := s.Authenticate(ctx, "ghost", "x")

	assert.ErrorIs(t, wrongPw, common.ErrInvalidCredentials)
	assert.ErrorIs(t, ghost, common.ErrInvalidCredentials)
	// Same sentinel for both, by design.
	assert.Equal(t, wrongPw, ghost)
}

func TestLogout_RevokesUntilNaturalExpiry(t *testing.T) {
	t.Parallel()

	s, revoked := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "pw123", "alice@x.com")
	require.NoError(t, err)

	minted, err := s.Authenticate(ctx, "alice", "pw123")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, minted))

	isRevoked, err := revoked.IsRevoked(ctx, minted)
	require.NoError(t, err)
	assert.True(t, isRevoked)

	err = s.Logout(ctx, minted)
	assert.ErrorIs(t, err, common.ErrAlreadyRevoked)
}

func TestLogout_DecodeErrorsPropagate(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	ctx := context.Background()

	err := s.Logout(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, common.ErrTokenMalformed)

	other := token.NewCodec([]byte("other-secret"))
	foreign, err := other.Mint("mallory", time.Hour)
	require.NoError(t, err)

	err = s.Logout(ctx, foreign)
	assert.ErrorIs(t, err, common.ErrInvalidSignature)
}

func TestEnsureSeedData(t *testing.T) {
	t.Parallel()

	repo := users.NewMemoryRepository()
	s := NewService(repo, plainHasher{}, token.NewCodec([]byte("k")),
		revocation.NewMemoryStore(0), time.Hour, testLogger())
	ctx := context.Background()

	seed := SeedData{AdminLogin: "admin", AdminPassword: "secure_pass", AdminEmail: "admin@test.ru"}
	require.NoError(t, s.EnsureSeedData(ctx, seed))

	for _, role := range users.SeedRoles {
		exists, err := repo.RoleExists(ctx, role)
		require.NoError(t, err)
		assert.True(t, exists, "role %s must be seeded", role)
	}

	admin, err := repo.GetByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{users.RoleAdmin}, admin.Roles)

	// Second run leaves existing records alone.
	require.NoError(t, s.EnsureSeedData(ctx, seed))
	again, err := repo.GetByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
}
