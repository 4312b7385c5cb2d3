package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/voyagehub/reservation-checkout/internal/config"
)

// fixed-window counter: INCR the window key and stamp its expiry on first
// use, atomically.
var windowScript = redis.NewScript(`
	local hits = redis.call('INCR', KEYS[1])
	if hits == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { hits, ttl }
`)

// NewFixedWindowLimiter returns a middleware limiting requests per caller
// per route within a fixed window. It guards the sync enqueue endpoint:
// every accepted enqueue starts a polling loop against the order desk, so
// hammering it multiplies background load. Keys combine client IP, user id
// and route. Disabled config or a nil Redis client yields a no-op.
func NewFixedWindowLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := "guest"
			if id, ok := UserID(c); ok {
				user = strconv.FormatUint(id, 10)
			}
			key := fmt.Sprintf("%s:%s:%s:%s", cfg.Prefix, c.RealIP(), user, c.Path())

			ctx := c.Request().Context()
			vals, err := windowScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Int64Slice()
			if err != nil || len(vals) != 2 {
				// Redis trouble never blocks checkout traffic.
				return next(c)
			}
			hits, ttlMs := vals[0], vals[1]

			remaining := int64(cfg.Limit) - hits
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if hits > int64(cfg.Limit) {
				retryAfter := time.Duration(ttlMs) * time.Millisecond
				if retryAfter < 0 {
					retryAfter = cfg.Window
				}
				h.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+1)))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
