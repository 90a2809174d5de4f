// Package users stores credential records and their role assignments.
package users

import (
	"context"
)

// Repository is the credential store contract. Implementations enforce the
// uniqueness of login and email and surface violations as common.ErrLoginTaken
// and common.ErrEmailTaken. Lookups return common.ErrNotFound for missing
// records.
type Repository interface {
	// Create persists a new user together with its initial roles and returns
	// the stored record with its assigned ID.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByLogin returns the user with the given login, roles included.
	GetByLogin(ctx context.Context, login string) (*User, error)

	// GetByEmail returns the user with the given email, roles included.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// AssignRole grants the named role to the user. Granting an already held
	// role is a no-op.
	AssignRole(ctx context.Context, userID, role string) error

	// RoleExists reports whether the named role is defined.
	RoleExists(ctx context.Context, name string) (bool, error)

	// CreateRole defines a role. Creating an existing role is a no-op.
	CreateRole(ctx context.Context, name string) error
}
