// Package ratelimit throttles /api requests per client address.
package ratelimit

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

var ErrTooManyRequests = apperr.New(apperr.RateLimited, "Too many requests, please try again later.")

// New allows max requests per window for each client IP. A nil storage keeps
// counters in process memory.
func New(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "ratelimit:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrTooManyRequests
		},
		Storage: storage,
	})
}
