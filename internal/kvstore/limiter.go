package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateResult is the outcome of one Allow call.
type RateResult struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// slidingWindow trims the sorted set to the window, then admits the request
// when fewer than limit entries remain. It returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local counter_key = KEYS[2]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
	local seq = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. seq)
	redis.call('PEXPIRE', key, window_ms)
	redis.call('PEXPIRE', counter_key, window_ms)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry_after = 0
if #oldest >= 2 then
	retry_after = oldest[2] + window_ms - now
end
return {0, 0, retry_after}
`)

// SlidingWindowLimiter limits requests per key over a rolling window.
type SlidingWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewSlidingWindowLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow records the request for key if it fits in the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (RateResult, error) {
	now := time.Now()
	redisKey := l.prefix + key
	res, err := slidingWindow.Run(ctx, l.client, []string{redisKey, redisKey + ":seq"},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return RateResult{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) < 3 {
		return RateResult{}, fmt.Errorf("rate limit script: unexpected result length %d", len(res))
	}
	return RateResult{
		Allowed:    res[0] == 1,
		Remaining:  int(res[1]),
		Limit:      l.limit,
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
