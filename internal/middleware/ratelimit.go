package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorconnect/backend/internal/http/dto"
)

// rateLimitKey buckets by request path and caller. Callers that passed
// AuthMiddleware are keyed by account, so users sharing an address do not
// throttle each other; everyone else is keyed by IP.
func rateLimitKey(c *fiber.Ctx, window time.Duration, now time.Time) string {
	who := "ip:" + c.IP()
	if id := GetUserID(c); id != uuid.Nil {
		who = "user:" + id.String()
	}
	bucket := now.Unix() / int64(window.Seconds())
	return fmt.Sprintf("rl:%s:%s:%d", c.Path(), who, bucket)
}

// RateLimitMiddleware counts requests per path and caller in fixed windows.
// Mount it after AuthMiddleware for account keys; before it, callers are
// keyed by IP. A nil client or a Redis error lets the request through.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || limit <= 0 || window < time.Second {
			return c.Next()
		}

		key := rateLimitKey(c, window, time.Now())

		ctx := c.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next() // fail open
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))

		if count > int64(limit) {
			reqID, _ := c.Locals(CtxRequestID).(string)
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error:     "rate limit exceeded",
				RequestID: reqID,
			})
		}

		return c.Next()
	}
}
