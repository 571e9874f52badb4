package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdempotencyCache maps idempotency:<key> to a payment id. Lookups treat
// any backend trouble as a miss; the caller falls through to the database.
type IdempotencyCache struct {
	c *Client
}

func NewIdempotencyCache(c *Client) *IdempotencyCache {
	return &IdempotencyCache{c: c}
}

func (i *IdempotencyCache) Lookup(ctx context.Context, key string) (uuid.UUID, bool) {
	if !i.c.available() {
		return uuid.Nil, false
	}

	val, err := i.c.rdb.Get(ctx, "idempotency:"+key).Result()
	if err != nil {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(val)
	if err != nil {
		i.c.logger.WarnContext(ctx, "corrupt idempotency cache entry", "key", key, "value", val)
		return uuid.Nil, false
	}
	return id, true
}

func (i *IdempotencyCache) Store(ctx context.Context, key string, paymentID uuid.UUID, ttl time.Duration) {
	if !i.c.available() {
		return
	}

	if err := i.c.rdb.Set(ctx, "idempotency:"+key, paymentID.String(), ttl).Err(); err != nil {
		i.c.logger.WarnContext(ctx, "idempotency cache store failed", "key", key, "error", err)
	}
}
