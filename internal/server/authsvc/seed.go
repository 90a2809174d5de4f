package authsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/server/users"
)

// SeedData describes the initial records created at startup.
type SeedData struct {
	AdminLogin    string
	AdminPassword string
	AdminEmail    string
}

// EnsureSeedData creates the built-in roles and, when configured, the initial
// admin account. Safe to run on every start: existing records are left alone.
func (s *Service) EnsureSeedData(ctx context.Context, seed SeedData) error {
	for _, role := range users.SeedRoles {
		if err := s.repo.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("creating role %s: %w", role, err)
		}
	}

	if seed.AdminLogin == "" {
		return nil
	}

	_, err := s.repo.GetByLogin(ctx, seed.AdminLogin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("looking up admin: %w", err)
	}

	hash, err := s.hasher.Hash(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	_, err = s.repo.Create(ctx, &users.User{
		Login:        seed.AdminLogin,
		Email:        seed.AdminEmail,
		PasswordHash: hash,
		Roles:        []string{users.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	s.logger.Info(ctx, "admin user created", "login", seed.AdminLogin)
	return nil
}
