// Package authsvc implements registration, credential authentication with
// token issuance, and explicit logout (token revocation).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/logging"
	"github.com/example/authgate/internal/server/revocation"
	"github.com/example/authgate/internal/server/token"
	"github.com/example/authgate/internal/server/users"
)

type Service struct {
	repo     users.Repository
	hasher   users.Hasher
	codec    *token.Codec
	revoked  revocation.Store
	tokenTTL time.Duration
	logger   logging.Logger
}

func NewService(repo users.Repository, hasher users.Hasher, codec *token.Codec, revoked revocation.Store, tokenTTL time.Duration, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		codec:    codec,
		revoked:  revoked,
		tokenTTL: tokenTTL,
		logger:   logger.With("module", "authsvc"),
	}
}

// Register creates a credential record with the default role. The login and
// email must be free; violations surface as common.ErrLoginTaken and
// common.ErrEmailTaken.
func (s *Service) Register(ctx context.Context, login, password, email string) (*users.User, error) {
	if login == "" || password == "" || email == "" {
		return nil, common.ErrInvalidArgument
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &users.User{
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{users.RoleGuest},
	})
	if err != nil {
		if errors.Is(err, common.ErrLoginTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		s.logger.Error(ctx, "creating user", "error", err.Error())
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user registered", "login", login)
	return user, nil
}

// Authenticate verifies the login/password pair and mints a bearer token.
// Unknown logins and wrong passwords both map to common.ErrInvalidCredentials
// so the response cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, login, password string) (string, error) {
	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "looking up user", "error", err.Error())
		return "", common.ErrInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	minted, err := s.codec.Mint(user.Login, s.tokenTTL)
	if err != nil {
		s.logger.Error(ctx, "minting token", "error", err.Error())
		return "", common.ErrInternal
	}

	return minted, nil
}

// Logout revokes the presented token until its natural expiry. Decode errors
// propagate unchanged; revoking an already revoked token yields
// common.ErrAlreadyRevoked.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	subject, err := s.codec.Subject(tokenString)
	if err != nil {
		return err
	}
	expiry, err := s.codec.Expiry(tokenString)
	if err != nil {
		return err
	}

	revoked, err := s.revoked.IsRevoked(ctx, tokenString)
	if err != nil {
		s.logger.Error(ctx, "checking revocation", "error", err.Error())
		return common.ErrInternal
	}
	if revoked {
		return common.ErrAlreadyRevoked
	}

	if err := s.revoked.Revoke(ctx, tokenString, expiry); err != nil {
		if errors.Is(err, common.ErrInvalidArgument) {
			return err
		}
		s.logger.Error(ctx, "revoking token", "error", err.Error())
		return common.ErrInternal
	}

	s.logger.Info(ctx, "token revoked", "subject", subject)
	return nil
}
