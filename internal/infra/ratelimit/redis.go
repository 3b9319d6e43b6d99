package ratelimit

import (
	"context"
	"time"

	"quizgate/internal/infra/redis"
)

// RedisLimiter is the multi-instance backend: INCR + EXPIRE fixed windows.
// Unlike MemoryLimiter it keeps counting denied attempts, which is the
// stricter of the two admission policies.
type RedisLimiter struct {
	client redis.Client
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, redisKey(key))
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey(key), window); err != nil {
			return false, err
		}
	}
	return count <= int64(max), nil
}

func (r *RedisLimiter) RetryAfter(ctx context.Context, key string) time.Duration {
	ttl, err := r.client.TTL(ctx, redisKey(key))
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func redisKey(key string) string { return "rate_limit:" + key }
