package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockTTL = 30 * time.Second

// Compare-and-delete so a stale holder can never release a lock that was
// re-acquired after its TTL expired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Lock is a TTL-leased distributed mutex over lock:<name>. Acquire returns
// a fencing token required for release. With no backend it fails open:
// callers proceed unlocked, in degraded mode.
type Lock struct {
	c *Client
}

func NewLock(c *Client) *Lock {
	return &Lock{c: c}
}

func (l *Lock) Acquire(ctx context.Context, name string) (string, bool) {
	if !l.c.available() {
		l.c.logger.WarnContext(ctx, "lock backend unavailable, proceeding unlocked", "name", name)
		return "", true
	}

	token := uuid.New().String()

	acquired, err := l.c.rdb.SetNX(ctx, "lock:"+name, token, lockTTL).Result()
	if err != nil {
		l.c.logger.WarnContext(ctx, "lock acquire error, proceeding unlocked", "name", name, "error", err)
		return "", true
	}
	if !acquired {
		l.c.logger.InfoContext(ctx, "lock already held", "name", name)
		return "", false
	}

	return token, true
}

func (l *Lock) Release(ctx context.Context, name string, token string) {
	if !l.c.available() || token == "" {
		return
	}

	if err := releaseScript.Run(ctx, l.c.rdb, []string{"lock:" + name}, token).Err(); err != nil {
		l.c.logger.WarnContext(ctx, "lock release failed", "name", name, "error", err)
	}
}
