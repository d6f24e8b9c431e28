package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("failed to close cache client: %v", err)
		}
	})

	return mr, c
}

func TestRedisCache_SetAndGet(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "statsapi:teams", []byte(`{"teams":[]}`), time.Minute))

	val, err := c.Get(ctx, "statsapi:teams")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"teams":[]}`), val)
}

func TestRedisCache_MissOnAbsentKey(t *testing.T) {
	_, c := newTestCache(t)

	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("value"), 30*time.Second))

	mr.FastForward(time.Minute)

	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrMiss, "expired entries behave like misses")
}
