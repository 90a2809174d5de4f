// Package revocation tracks tokens that were explicitly invalidated before
// their natural expiry. A record never outlives the token it belongs to: once
// the recorded expiry passes, the entry is treated as "not revoked" (the token
// is expired anyway) and removed. This self-cleaning keeps the set bounded by
// the number of live tokens.
package revocation

import (
	"context"
	"time"
)

// Store is a concurrent-safe set of revoked token identifiers mapped to their
// natural expiry. Implementations require no caller-side locking.
//
// Records are keyed by the raw token string; tokens are unique per issuance,
// so no derived identifier is needed. A content hash would be a more
// memory-frugal key and remains a valid alternative.
type Store interface {
	// Revoke records the token as revoked until expiresAt. Idempotent.
	// An empty token or zero expiry is rejected with common.ErrInvalidArgument:
	// a missing expiry would otherwise create an entry that never evicts.
	Revoke(ctx context.Context, token string, expiresAt time.Time) error

	// IsRevoked reports whether the token is currently revoked. An entry whose
	// recorded expiry has passed is purged as a side effect and reported as
	// not revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}
