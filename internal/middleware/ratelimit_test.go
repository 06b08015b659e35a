package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter is an in-memory stand-in for Redis INCR/EXPIRE
type fakeCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	err     error

	expireErr error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.expireErr != nil {
		return redis.NewBoolResult(false, f.expireErr)
	}
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func newLimitedApp(counter Counter, perSecond int, now func() time.Time) *fiber.App {
	app := fiber.New()
	app.Use(rateLimit(counter, perSecond, now))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimit(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	counter := newFakeCounter()
	app := newLimitedApp(counter, 2, func() time.Time { return clock })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)

		if i == 0 {
			assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit-Second"))
			assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining-Second"))
		}
		if i == 2 {
			assert.Equal(t, "1", resp.Header.Get("Retry-After"))
			assert.Equal(t, "1700000001", resp.Header.Get("X-RateLimit-Reset-Second"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, statuses)

	// counters expire shortly after their second
	require.Len(t, counter.expires, 1)
	for _, ttl := range counter.expires {
		assert.Equal(t, 2*time.Second, ttl)
	}

	t.Run("Next second starts a new window", func(t *testing.T) {
		clock = clock.Add(time.Second)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

func TestRateLimitDisabled(t *testing.T) {
	counter := newFakeCounter()
	app := newLimitedApp(counter, 0, time.Now)

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	assert.Empty(t, counter.counts)
}

func TestRateLimitFailsOpen(t *testing.T) {
	counter := newFakeCounter()
	counter.err = errors.New("connection refused")
	app := newLimitedApp(counter, 1, time.Now)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestRateLimitExpiryFailure(t *testing.T) {
	clock := time.Unix(1700000000, 0)
	counter := newFakeCounter()
	counter.expireErr = errors.New("READONLY You can't write against a read only replica")
	app := newLimitedApp(counter, 2, func() time.Time { return clock })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}

	// the counter still limits even though it was never given a TTL
	assert.Equal(t, []int{200, 200, 429}, statuses)
	assert.Empty(t, counter.expires)
}
