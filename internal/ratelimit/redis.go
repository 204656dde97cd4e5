package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts requests in Redis so every instance behind the load
// balancer shares the same window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Allow increments the counter for key in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	start := windowStart(now, window)
	reset := start.Add(window)
	counterKey := l.counterKey(key, start)

	var incr *redis.IntCmd
	_, errExec := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, counterKey)
		// One spare window so skewed clocks still find the counter.
		pipe.PExpire(ctx, counterKey, 2*window)
		return nil
	})
	if errExec != nil {
		return Result{}, fmt.Errorf("rate limit redis: %w", errExec)
	}
	count := incr.Val()
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), Reset: reset}, nil
}

func (l *RedisLimiter) counterKey(key string, start time.Time) string {
	parts := []string{"ratelimit", key, strconv.FormatInt(start.Unix(), 10)}
	if l.prefix != "" {
		parts = append([]string{l.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}
