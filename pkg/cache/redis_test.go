package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensala/viewer/pkg/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := cache.NewRedisCacheFromClient(client, cache.WithRedisPrefix("test:"))
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedis(t)

	require.NoError(t, c.Ping(ctx))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	assert.True(t, mr.Exists("test:k"), "key should carry the prefix")

	data, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", string(data))

	require.NoError(t, c.Delete(ctx, "k"))
	_, hit, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.Delete(ctx, "k"))
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr, c := newRedis(t)

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))

	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")

	_, hit, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, hit, "ttl 0 should not expire")
}

func TestOpen_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := cache.Open(context.Background(), cache.Options{Backend: cache.BackendRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("sensala:cache:k"))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = cache.Open(ctx, cache.Options{Backend: cache.BackendRedis, RedisAddr: addr})
	assert.Error(t, err)
}
