package redis

import (
	"context"
	"time"
)

const (
	rateLimit  = 10
	rateWindow = 60 * time.Second
)

// RateLimiter is a fixed-window counter on rate:<principal>: 10 requests
// per 60 seconds. Any backend error allows the request.
type RateLimiter struct {
	c *Client
}

func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{c: c}
}

func (r *RateLimiter) Allow(ctx context.Context, principal string) bool {
	if !r.c.available() {
		return true
	}

	key := "rate:" + principal

	current, err := r.c.rdb.Incr(ctx, key).Result()
	if err != nil {
		r.c.logger.WarnContext(ctx, "rate limit error, allowing request", "principal", principal, "error", err)
		return true
	}

	if current == 1 {
		if err := r.c.rdb.Expire(ctx, key, rateWindow).Err(); err != nil {
			r.c.logger.WarnContext(ctx, "rate limit expiry error", "principal", principal, "error", err)
		}
	}

	if current > rateLimit {
		r.c.logger.InfoContext(ctx, "rate limit exceeded", "principal", principal, "count", current)
		return false
	}

	return true
}
