package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter().WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "other", 3, time.Minute)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "k", 3, time.Minute)
	assert.True(t, ok)
}

func TestMemoryLimiterReset(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	ok, _ := l.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k", 1, time.Minute)
	assert.False(t, ok)

	require.NoError(t, l.Reset(ctx, "k"))
	ok, _ = l.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, ok)
}

func newRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLimiter(rdb), mr
}

func TestRedisLimiterWindow(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "otp:attempts:a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, err := l.Allow(ctx, "otp:attempts:a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("campus:rl:otp:attempts:a"))

	mr.FastForward(time.Minute)
	ok, err = l.Allow(ctx, "otp:attempts:a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterWindowNotExtended(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	_, err := l.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)

	_, err = l.Allow(ctx, "k", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, mr.TTL("campus:rl:k"))
}

func TestRedisLimiterRepairsMissingExpiry(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	// a counter stuck above the limit with no TTL
	require.NoError(t, mr.Set("campus:rl:k", "9"))

	ok, err := l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("campus:rl:k"))

	mr.FastForward(time.Minute)
	ok, err = l.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterReset(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	_, err := l.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, l.Reset(ctx, "k"))
	assert.False(t, mr.Exists("campus:rl:k"))

	ok, err := l.Allow(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: time.Second})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisLimiter(rdb)

	_, err := l.Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
