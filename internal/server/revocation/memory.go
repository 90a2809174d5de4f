package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/example/authgate/internal/common"
)

// MemoryStore keeps revocation records in a mutex-guarded map. Eviction is
// lazy: expired entries are purged when queried. An optional periodic sweep
// bounds memory under low traffic, where entries nobody re-validates would
// otherwise linger until process restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time

	sweepInterval time.Duration

	// now is a test seam.
	now func() time.Time
}

// NewMemoryStore constructs an empty store. sweepInterval <= 0 disables the
// periodic sweep; lazy purge-on-read still applies.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:       make(map[string]time.Time),
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// Revoke records the token until expiresAt. Re-revoking an already revoked
// token overwrites the entry with the same expiry and is a no-op in effect.
func (s *MemoryStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if token == "" || expiresAt.IsZero() {
		return common.ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = expiresAt

	return nil
}

// IsRevoked reports whether token has an unexpired revocation record. The
// check and the purge of an expired entry happen under one lock, so no caller
// can observe a half-evicted entry.
func (s *MemoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	if token == "" {
		return false, common.ErrInvalidArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(s.now()) {
		delete(s.entries, token)
		return false, nil
	}

	return true, nil
}

// Len returns the number of physical records, including expired ones that
// have not been purged yet.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps expired entries at the configured interval until ctx is
// cancelled. Returns immediately when the sweep is disabled.
func (s *MemoryStore) Run(ctx context.Context) {
	if s.sweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, expiresAt := range s.entries {
		if !expiresAt.After(now) {
			delete(s.entries, token)
		}
	}
}
