package middleware

import (
	"strconv"

	"easyncd/pkg/apperr"
	"easyncd/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// RateLimit implements spec §4.2 step 3 with a per (user, device, cmd)
// sliding-window limiter. Exceeding it returns 429 with Retry-After.
func RateLimit(limiter *ratelimit.CommandLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		userID := ""
		if user != nil {
			userID = strconv.FormatInt(user.ID, 10)
		}
		key := ratelimit.Key(userID, c.Query("DeviceId"), c.Query("Cmd"))

		allowed, retryAfter := limiter.Allow(c.UserContext(), key)
		if !allowed {
			return apperr.RateLimited(int(retryAfter.Seconds()))
		}
		return c.Next()
	}
}
