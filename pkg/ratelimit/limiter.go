// Package ratelimit implements the sliding-window limit used to protect
// the EAS router (spec §4.2) from a runaway device: one one-minute window
// per (user, device, cmd), backed by Redis so multiple API processes share
// the same budget. It is not a token bucket: requests are counted over
// the trailing minute against a fixed rate+burst ceiling.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter configuration. RequestsPerMinute maps onto the
// RATE_LIMIT_PER_MIN environment variable (spec §6).
type Config struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RequestsPerMinute: 120,
		BurstSize:         20,
	}
}

// CommandLimiter is a Redis-backed sliding window limiter keyed per
// (user_id, device_id, cmd), as required by spec §4.2 item 3.
type CommandLimiter struct {
	redis  *redis.Client
	rate   int
	window time.Duration
	burst  int
}

// NewCommandLimiter builds a limiter. A nil redis client makes Allow always
// permit the request (fail-open), matching the teacher's fallback
// discipline for an optional dependency.
func NewCommandLimiter(redisClient *redis.Client, cfg *Config) *CommandLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &CommandLimiter{
		redis:  redisClient,
		rate:   cfg.RequestsPerMinute,
		window: time.Minute,
		burst:  cfg.BurstSize,
	}
}

// Key builds the bucket key for a (user, device, cmd) triple.
func Key(userID, deviceID, cmd string) string {
	return fmt.Sprintf("%s:%s:%s", userID, deviceID, cmd)
}

// Allow reports whether the request identified by key may proceed, and if
// not, how long the caller should report via Retry-After.
func (l *CommandLimiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration) {
	if l.redis == nil {
		return true, 0
	}

	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := fmt.Sprintf("ratelimit:cmd:%s", key)

	// Atomic sliding-window check: drop entries older than the window, then
	// admit iff under the (rate+burst) ceiling.
	script := redis.NewScript(`
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local max_requests = tonumber(ARGV[3])
		local window_ms = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
		local count = redis.call('ZCARD', key)

		if count < max_requests then
			redis.call('ZADD', key, now, now .. '-' .. math.random())
			redis.call('PEXPIRE', key, window_ms * 2)
			return 1
		else
			local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
			if #oldest > 0 then
				return -(oldest[2] + window_ms - now)
			end
			return 0
		end
	`)

	result, err := script.Run(ctx, l.redis, []string{redisKey},
		now.UnixMilli(),
		windowStart.UnixMilli(),
		l.rate+l.burst,
		l.window.Milliseconds(),
	).Int64()

	if err != nil {
		// Redis unavailable: fail open rather than lock every device out.
		return true, 0
	}
	if result == 1 {
		return true, 0
	}
	if result < 0 {
		return false, time.Duration(-result) * time.Millisecond
	}
	return false, l.window
}
