package auth

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToBlacklist(t *testing.T) {
	store := NewInMemoryBlacklistStore(nil)
	jti := "test-token-id"
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.AddToBlacklist(jti, exp))

	store.mu.RLock()
	expTime, exists := store.blacklist[jti]
	store.mu.RUnlock()

	assert.True(t, exists)
	assert.Equal(t, exp, expTime)
}

func TestIsBlacklisted(t *testing.T) {
	store := NewInMemoryBlacklistStore(nil)

	isBlacklisted, err := store.IsBlacklisted("non-existent-token")
	assert.NoError(t, err)
	assert.False(t, isBlacklisted)

	require.NoError(t, store.AddToBlacklist("blacklisted-token", time.Now().Add(time.Hour)))
	isBlacklisted, err = store.IsBlacklisted("blacklisted-token")
	assert.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func TestCleanUpExpired(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewInMemoryBlacklistStore(clk)

	require.NoError(t, store.AddToBlacklist("expired", clk.Now().Add(time.Minute)))
	require.NoError(t, store.AddToBlacklist("valid", clk.Now().Add(time.Hour)))

	clk.Advance(2 * time.Minute)
	store.CleanUpExpired()

	expired, _ := store.IsBlacklisted("expired")
	valid, _ := store.IsBlacklisted("valid")
	assert.False(t, expired)
	assert.True(t, valid)
}

func TestRunCleanUp(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewInMemoryBlacklistStore(clk)
	require.NoError(t, store.AddToBlacklist("expired", clk.Now().Add(time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunCleanUp(ctx, time.Minute)
		close(done)
	}()

	require.NoError(t, clk.WaitAdvance(time.Minute, time.Second, 1))
	assert.Eventually(t, func() bool {
		ok, _ := store.IsBlacklisted("expired")
		return !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
