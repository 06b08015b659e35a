package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter is the subset of the Redis client used for rate limiting
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimitMiddleware limits each client IP to perSecond requests per second.
// Counters live in Redis so every API instance shares them. When Redis is
// unavailable requests are let through.
func RateLimitMiddleware(rdb Counter, perSecond int) fiber.Handler {
	return rateLimit(rdb, perSecond, time.Now)
}

func rateLimit(rdb Counter, perSecond int, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if perSecond <= 0 {
			return c.Next()
		}

		ctx := c.Context()
		second := now().Unix()
		key := fmt.Sprintf("rl:ip:%s:second:%d", c.IP(), second)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("Warning: rate limit counter failed: %v", err)
			return c.Next()
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, 2*time.Second).Err(); err != nil {
				log.Printf("Warning: rate limit counter expiry failed: %v", err)
			}
		}

		c.Set("X-RateLimit-Limit-Second", strconv.Itoa(perSecond))

		if count > int64(perSecond) {
			c.Set("X-RateLimit-Remaining-Second", "0")
			c.Set("X-RateLimit-Reset-Second", strconv.FormatInt(second+1, 10))
			c.Set("Retry-After", "1")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests per second",
				"limit":       perSecond,
				"retry_after": 1,
			})
		}

		c.Set("X-RateLimit-Remaining-Second", strconv.FormatInt(int64(perSecond)-count, 10))
		return c.Next()
	}
}
