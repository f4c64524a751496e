package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
)

// NewRateLimiter returns a Redis-backed fixed-window rate limiter.
// Each key gets cfg.Limit requests per cfg.Window; the counter key
// carries the window start so clients see a Retry-After that points at
// the next window.  When Redis is unavailable (nil client) or disabled
// the middleware is a pass-through, and Redis errors at request time
// fail open so the API never depends on the limiter to serve traffic.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowSecs := int64(cfg.Window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now().Unix()
			window := now - now%windowSecs
			key := fmt.Sprintf("%s:%s:%d", cfg.Prefix, buildRateKey(cfg, c), window)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c) // fail open
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := window + windowSecs - now
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}

// buildRateKey derives the limiter key from the request per the
// configured strategy.  The user part comes from the JWT middleware
// when present and falls back to "anon".
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := "anon"
	if v := c.Get("user_id"); v != nil {
		uid = fmt.Sprint(v)
	}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return "ip:" + ip
	case "user":
		return "user:" + uid
	default: // "ip_user"
		return "ip:" + ip + ":user:" + uid
	}
}
