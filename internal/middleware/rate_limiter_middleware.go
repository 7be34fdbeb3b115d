package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	return rateLimiter(max, expiration, nil)
}

// SessionRateLimiter limits requests per session id route parameter instead of per client IP.
func SessionRateLimiter(max int, expiration time.Duration) fiber.Handler {
	return rateLimiter(max, expiration, func(c *fiber.Ctx) string {
		return "session:" + c.Params("id")
	})
}

func rateLimiter(max int, expiration time.Duration, key func(c *fiber.Ctx) string) fiber.Handler {
	if max == 0 {
		max = 50
	}
	if expiration == 0 {
		expiration = 1 * time.Minute
	}
	cfg := limiter.Config{
		Max:        max,
		Expiration: expiration,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	}
	if key != nil {
		cfg.KeyGenerator = key
	}
	return limiter.New(cfg)
}
