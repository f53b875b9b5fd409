package auth

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"
)

// JwtBlacklistStore keeps revoked token ids until the token would expire anyway
type JwtBlacklistStore interface {
	// IsBlacklisted checks if the given JWT ID (jti) is blacklisted.
	IsBlacklisted(jti string) (bool, error)
	// AddToBlacklist adds the given JWT ID (jti) to the blacklist with an expiration time.
	AddToBlacklist(jti string, exp time.Time) error
}

// InMemoryBlacklistStore is a process local JwtBlacklistStore
type InMemoryBlacklistStore struct {
	blacklist map[string]time.Time
	mu        sync.RWMutex
	clock     clock.Clock
}

// NewInMemoryBlacklistStore return empty store. Call RunCleanUp to evict expired entries periodically.
func NewInMemoryBlacklistStore(clk clock.Clock) *InMemoryBlacklistStore {
	if clk == nil {
		clk = clock.WallClock
	}
	return &InMemoryBlacklistStore{
		blacklist: make(map[string]time.Time),
		clock:     clk,
	}
}

// RunCleanUp evict expired entries every interval until ctx is done
func (s *InMemoryBlacklistStore) RunCleanUp(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(interval):
			s.CleanUpExpired()
		}
	}
}

// CleanUpExpired drop entries whose token already expired
func (s *InMemoryBlacklistStore) CleanUpExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for jti, exp := range s.blacklist {
		if exp.Before(now) {
			delete(s.blacklist, jti)
		}
	}
}

// IsBlacklisted implements JwtBlacklistStore
func (s *InMemoryBlacklistStore) IsBlacklisted(jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blacklist[jti]
	return exists, nil
}

// AddToBlacklist implements JwtBlacklistStore
func (s *InMemoryBlacklistStore) AddToBlacklist(jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blacklist[jti] = exp
	return nil
}
