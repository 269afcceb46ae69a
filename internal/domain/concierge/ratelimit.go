package concierge

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window message counter kept in Redis
type RateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit messages per window
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  limit,
		window: window,
	}
}

// Allow checks if the caller identified by key can send another message
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || rl.redis == nil {
		return true // No Redis, allow all
	}

	k := fmt.Sprintf("ratelimit:concierge:%s", key)

	// The window TTL is set with the first hit in the same transaction as the increment.
	var count *redis.IntCmd
	_, err := rl.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, rl.window)
		count = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return true // Fail open
	}

	return count.Val() <= int64(rl.limit)
}
