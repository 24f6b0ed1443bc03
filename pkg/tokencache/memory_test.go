package tokencache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func claimsExpiringAt(at time.Time) identity.Claims {
	return identity.Claims{
		Subject:   1,
		Email:     "alice@example.com",
		IsActive:  true,
		CreatedAt: at.Add(-24 * time.Hour),
		ExpiresAt: at,
	}
}

func TestMemoryPutGetUntilTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	cache := newMemory(clock.Now, time.Hour)
	defer cache.Close()
	ctx := context.Background()

	claims := claimsExpiringAt(clock.Now().Add(time.Hour))
	cache.Put(ctx, "token-a", claims, 30*time.Second)

	got, ok := cache.Get(ctx, "token-a")
	require.True(t, ok)
	assert.Equal(t, claims, got)

	clock.Advance(29 * time.Second)
	_, ok = cache.Get(ctx, "token-a")
	assert.True(t, ok, "entry should survive until its ttl")

	clock.Advance(time.Second)
	_, ok = cache.Get(ctx, "token-a")
	assert.False(t, ok, "entry must miss once its ttl elapses")
	assert.Equal(t, 0, cache.len())
}

func TestMemoryClampsTTLToTokenExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	cache := newMemory(clock.Now, time.Hour)
	defer cache.Close()
	ctx := context.Background()

	cache.Put(ctx, "token-b", claimsExpiringAt(clock.Now().Add(10*time.Second)), time.Hour)
	clock.Advance(10 * time.Second)
	_, ok := cache.Get(ctx, "token-b")
	assert.False(t, ok, "cache must not outlive the token")
}

func TestMemorySkipsExpiredClaims(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	cache := newMemory(clock.Now, time.Hour)
	defer cache.Close()

	cache.Put(context.Background(), "token-c", claimsExpiringAt(clock.Now().Add(-time.Second)), time.Minute)
	cache.Put(context.Background(), "token-d", claimsExpiringAt(clock.Now().Add(time.Hour)), 0)
	assert.Equal(t, 0, cache.len())
}

func TestMemoryGetOnEmptyMisses(t *testing.T) {
	cache := NewMemory()
	defer cache.Close()
	_, ok := cache.Get(context.Background(), "unknown")
	assert.False(t, ok)
}

func TestMemoryCleanupAndClose(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)}
	cache := newMemory(clock.Now, time.Hour)
	cache.Put(context.Background(), "token-e", claimsExpiringAt(clock.Now().Add(time.Hour)), time.Second)
	cache.Put(context.Background(), "token-f", claimsExpiringAt(clock.Now().Add(time.Hour)), time.Minute)

	cache.cleanup(clock.Now().Add(2 * time.Second))
	assert.Equal(t, 1, cache.len())

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestDisabledAlwaysMisses(t *testing.T) {
	cache := Disabled()
	cache.Put(context.Background(), "token", claimsExpiringAt(time.Now().Add(time.Hour)), time.Minute)
	_, ok := cache.Get(context.Background(), "token")
	assert.False(t, ok)
	assert.NoError(t, cache.Close())
}

func TestOpenSelectsBackend(t *testing.T) {
	assert.IsType(t, disabledCache{}, Open("disabled", RedisOptions{}, nil))

	mem := Open("redis", RedisOptions{}, nil)
	defer mem.Close()
	assert.IsType(t, &memoryCache{}, mem)

	explicit := Open("memory", RedisOptions{Addr: "ignored:6379"}, nil)
	defer explicit.Close()
	assert.IsType(t, &memoryCache{}, explicit)
}
