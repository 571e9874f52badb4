package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/domain"
	redisadapter "github.com/DanielPopoola/ficmart-payment-pipeline/internal/infrastructure/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (*redisadapter.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisadapter.NewClient("redis://"+mr.Addr(), testLogger())
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func disabledClient() *redisadapter.Client {
	return redisadapter.NewClient("", testLogger())
}

func TestRateLimiter_WindowBoundary(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := redisadapter.NewRateLimiter(client)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		assert.True(t, limiter.Allow(ctx, "user-1"), "request %d should pass", i)
	}
	assert.False(t, limiter.Allow(ctx, "user-1"), "request 11 should be denied")
	assert.False(t, limiter.Allow(ctx, "user-1"), "denial persists within the window")

	assert.True(t, limiter.Allow(ctx, "user-2"), "other principals have their own window")

	mr.FastForward(61 * time.Second)
	assert.True(t, limiter.Allow(ctx, "user-1"), "window expiry resets the counter")
}

func TestRateLimiter_FailsOpenWithoutBackend(t *testing.T) {
	limiter := redisadapter.NewRateLimiter(disabledClient())

	for i := 0; i < 20; i++ {
		assert.True(t, limiter.Allow(context.Background(), "user-1"))
	}
}

func TestLock_AcquireAndContention(t *testing.T) {
	client, _ := newTestClient(t)
	lock := redisadapter.NewLock(client)
	ctx := context.Background()

	token, ok := lock.Acquire(ctx, "payment:abc")
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok = lock.Acquire(ctx, "payment:abc")
	assert.False(t, ok, "second acquire on a held lock must fail")

	_, ok = lock.Acquire(ctx, "payment:other")
	assert.True(t, ok, "locks on other names are independent")
}

func TestLock_ReleaseRequiresMatchingToken(t *testing.T) {
	client, _ := newTestClient(t)
	lock := redisadapter.NewLock(client)
	ctx := context.Background()

	token, ok := lock.Acquire(ctx, "payment:abc")
	require.True(t, ok)
	require.NotEmpty(t, token)

	lock.Release(ctx, "payment:abc", "stale-token")
	_, ok = lock.Acquire(ctx, "payment:abc")
	assert.False(t, ok, "a mismatched token must not release the lock")

	lock.Release(ctx, "payment:abc", token)
	next, ok := lock.Acquire(ctx, "payment:abc")
	assert.True(t, ok, "the holder's token releases the lock")
	assert.NotEqual(t, token, next)
}

func TestLock_ExpiresAfterTTL(t *testing.T) {
	client, mr := newTestClient(t)
	lock := redisadapter.NewLock(client)
	ctx := context.Background()

	_, ok := lock.Acquire(ctx, "payment:abc")
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	_, ok = lock.Acquire(ctx, "payment:abc")
	assert.True(t, ok, "an expired lease is free for the next worker")
}

func TestLock_FailsOpenWithoutBackend(t *testing.T) {
	lock := redisadapter.NewLock(disabledClient())

	token, ok := lock.Acquire(context.Background(), "payment:abc")
	assert.True(t, ok, "no backend means proceed unlocked")
	assert.Empty(t, token)
}

func TestIdempotencyCache(t *testing.T) {
	client, mr := newTestClient(t)
	cache := redisadapter.NewIdempotencyCache(client)
	ctx := context.Background()

	t.Run("store then lookup", func(t *testing.T) {
		paymentID := uuid.New()
		cache.Store(ctx, "key-1", paymentID, 5*time.Minute)

		got, ok := cache.Lookup(ctx, "key-1")
		require.True(t, ok)
		assert.Equal(t, paymentID, got)
	})

	t.Run("unknown key misses", func(t *testing.T) {
		_, ok := cache.Lookup(ctx, "never-stored")
		assert.False(t, ok)
	})

	t.Run("corrupt entry misses", func(t *testing.T) {
		require.NoError(t, mr.Set("idempotency:key-bad", "not-a-uuid"))

		_, ok := cache.Lookup(ctx, "key-bad")
		assert.False(t, ok)
	})

	t.Run("entry expires with its TTL", func(t *testing.T) {
		cache.Store(ctx, "key-ttl", uuid.New(), 5*time.Minute)
		mr.FastForward(6 * time.Minute)

		_, ok := cache.Lookup(ctx, "key-ttl")
		assert.False(t, ok)
	})
}

func TestPaymentCache_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	cache := redisadapter.NewPaymentCache(client)
	ctx := context.Background()

	money, err := domain.NewMoney(2500, "USD")
	require.NoError(t, err)
	payment, err := domain.NewPayment(uuid.New(), money, "key-cache")
	require.NoError(t, err)

	cache.Set(ctx, payment)

	got, ok := cache.Get(ctx, payment.ID)
	require.True(t, ok)
	assert.Equal(t, payment.ID, got.ID)
	assert.Equal(t, payment.AmountCents, got.AmountCents)
	assert.Equal(t, payment.Status, got.Status)

	_, ok = cache.Get(ctx, uuid.New())
	assert.False(t, ok, "unknown payment misses")

	require.NoError(t, mr.Set("payment:"+payment.ID.String(), "{broken"))
	_, ok = cache.Get(ctx, payment.ID)
	assert.False(t, ok, "corrupt entry misses")
}
