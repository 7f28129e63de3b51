package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"dayflow/internal/services"
)

// RedisRateLimit applies a fixed-window per-IP limit backed by Redis, so
// the count survives restarts and is shared across replicas. Used on the
// auth endpoints to slow credential stuffing. A nil Redis service disables
// the limit.
func RedisRateLimit(redis *services.RedisService, name string, limit int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redis == nil {
			return c.Next()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.IP())
		_, exceeded, err := redis.CheckRateLimit(c.Context(), key, limit, window)
		if err != nil {
			// Broken Redis must not lock everyone out.
			return c.Next()
		}
		if exceeded {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
