package tokencache

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisCache, *bytes.Buffer) {
	t.Helper()
	srv := miniredis.RunT(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	cache := NewRedis(RedisOptions{Addr: srv.Addr(), Timeout: time.Second}, logger).(*redisCache)
	t.Cleanup(func() { _ = cache.Close() })
	return srv, cache, &logs
}

func TestRedisPutGet(t *testing.T) {
	srv, cache, _ := newTestRedis(t)
	ctx := context.Background()
	claims := claimsExpiringAt(time.Now().Add(time.Hour).Truncate(time.Second).UTC())

	cache.Put(ctx, "raw-bearer-token", claims, time.Minute)

	got, ok := cache.Get(ctx, "raw-bearer-token")
	require.True(t, ok)
	assert.Equal(t, claims.Subject, got.Subject)
	assert.Equal(t, claims.Email, got.Email)
	assert.True(t, claims.ExpiresAt.Equal(got.ExpiresAt))

	keys := srv.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], defaultRedisPrefix))
	assert.NotContains(t, keys[0], "raw-bearer-token")
	assert.Equal(t, time.Minute, srv.TTL(keys[0]))
}

func TestRedisEntryExpires(t *testing.T) {
	srv, cache, _ := newTestRedis(t)
	ctx := context.Background()

	cache.Put(ctx, "token", claimsExpiringAt(time.Now().Add(time.Hour)), 30*time.Second)
	srv.FastForward(31 * time.Second)

	_, ok := cache.Get(ctx, "token")
	assert.False(t, ok)
}

func TestRedisClampsTTL(t *testing.T) {
	srv, cache, _ := newTestRedis(t)
	cache.Put(context.Background(), "token", claimsExpiringAt(time.Now().Add(20*time.Second)), time.Hour)

	keys := srv.Keys()
	require.Len(t, keys, 1)
	ttl := srv.TTL(keys[0])
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 20*time.Second)
}

func TestRedisCorruptValueIsMiss(t *testing.T) {
	srv, cache, logs := newTestRedis(t)
	require.NoError(t, srv.Set(defaultRedisPrefix+hashKey("token"), "{not json"))

	_, ok := cache.Get(context.Background(), "token")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "decode")
}

func TestRedisUnavailableIsMiss(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	var logs bytes.Buffer
	cache := NewRedis(RedisOptions{Addr: addr, Timeout: 100 * time.Millisecond}, slog.New(slog.NewJSONHandler(&logs, nil)))
	defer cache.Close()

	assert.NotPanics(t, func() {
		cache.Put(context.Background(), "token", claimsExpiringAt(time.Now().Add(time.Hour)), time.Minute)
	})
	_, ok := cache.Get(context.Background(), "token")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "token cache redis error")
}

func TestRedisServerGoesAway(t *testing.T) {
	srv, cache, _ := newTestRedis(t)
	ctx := context.Background()
	cache.Put(ctx, "token", claimsExpiringAt(time.Now().Add(time.Hour)), time.Minute)
	srv.Close()

	_, ok := cache.Get(ctx, "token")
	assert.False(t, ok)
}
