package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/models"
)

const testRedisAddr = "localhost:6379"

// redisClient returns a client for a local Redis or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	prefix := "test:tasks:ratelimit:"
	t.Cleanup(func() { client.Del(ctx, prefix+"k", prefix+"k:seq", prefix+"other", prefix+"other:seq") })
	client.Del(ctx, prefix+"k", prefix+"k:seq", prefix+"other", prefix+"other:seq")

	limiter := NewSlidingWindowLimiter(client, 3, time.Minute, prefix)

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 3-i-1, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	res, err = limiter.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestStats(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	stats := NewStats(client, "test:")
	require.NoError(t, stats.Reset(ctx))
	t.Cleanup(func() { _ = stats.Reset(ctx) })

	empty, err := stats.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, TaskStats{}, empty)

	require.NoError(t, stats.Incr(ctx, models.EventTaskCreated))
	require.NoError(t, stats.Incr(ctx, models.EventTaskCreated))
	require.NoError(t, stats.Incr(ctx, models.EventTaskCompleted))

	got, err := stats.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, TaskStats{Created: 2, Completed: 1}, got)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("abc"))
	assert.Equal(t, int64(12), parseCount("12"))
}

func TestNewClientBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-url", 5)
	assert.Error(t, err)
}
