// Package session answers whether a presented bearer token is currently
// usable and for whom.
package session

import (
	"context"
	"errors"

	"github.com/example/authgate/internal/common"
	"github.com/example/authgate/internal/server/revocation"
	"github.com/example/authgate/internal/server/token"
	"github.com/example/authgate/internal/server/users"
)

// Principal is the resolved identity behind a valid token. Roles come from
// the credential store at validation time, never from token claims, so role
// changes take effect without reissuing tokens.
type Principal struct {
	Subject string
	Roles   []string
}

type Validator struct {
	codec   *token.Codec
	repo    users.Repository
	revoked revocation.Store
}

func NewValidator(codec *token.Codec, repo users.Repository, revoked revocation.Store) *Validator {
	return &Validator{codec: codec, repo: repo, revoked: revoked}
}

// Validate decodes the token, resolves its subject against the credential
// store and checks the revocation set.
//
// Errors: decode errors propagate unchanged (common.ErrTokenMalformed,
// common.ErrInvalidSignature, common.ErrTokenExpired);
// common.ErrUnknownSubject when the account no longer exists;
// common.ErrRevoked when the token was logged out.
func (v *Validator) Validate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := v.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := v.repo.GetByLogin(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownSubject
		}
		return nil, common.ErrInternal
	}

	revoked, err := v.revoked.IsRevoked(ctx, tokenString)
	if err != nil {
		return nil, common.ErrInternal
	}
	if revoked {
		return nil, common.ErrRevoked
	}

	return &Principal{Subject: user.Login, Roles: user.Roles}, nil
}
