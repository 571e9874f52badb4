// Package redis holds the cache, lock and rate-limit adapters. Every
// adapter fails open: an absent or unreachable backend degrades the
// feature, never the request.
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb    redis.UniversalClient
	logger *slog.Logger
}

// NewClient builds a shared client from REDIS_URL. An empty URL or a
// malformed one yields a disabled client; callers degrade to fail-open.
func NewClient(redisURL string, logger *slog.Logger) *Client {
	if redisURL == "" {
		logger.Warn("REDIS_URL not set, cache/lock/rate-limit disabled")
		return &Client{logger: logger}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL, cache/lock/rate-limit disabled", "error", err)
		return &Client{logger: logger}
	}

	opts.DialTimeout = time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second

	return &Client{
		rdb:    redis.NewClient(opts),
		logger: logger,
	}
}

func (c *Client) available() bool {
	return c.rdb != nil
}

// Ping validates connectivity; used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	if !c.available() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.available() {
		return nil
	}
	return c.rdb.Close()
}
