package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lahray/ticket-payments/internal/config"
)

// tokenBucketScript refills and draws from a per-client bucket in one
// atomic step.  State lives in a Redis hash: remaining tokens plus the
// last refill time.  One token comes back per refill interval; a draw on
// an empty bucket reports how long until the next token.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local refill_ms = tonumber(ARGV[3])
	local ttl_s = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'refilled_ms')
	local tokens = tonumber(state[1])
	local refilled = tonumber(state[2])
	if tokens == nil then
		tokens = burst
		refilled = now_ms
	end

	local gained = math.floor((now_ms - refilled) / refill_ms)
	if gained > 0 then
		tokens = math.min(burst, tokens + gained)
		refilled = refilled + gained * refill_ms
	end

	local wait_ms = 0
	if tokens > 0 then
		tokens = tokens - 1
	else
		wait_ms = refill_ms - (now_ms - refilled)
		if wait_ms < 0 then wait_ms = 0 end
	end

	redis.call('HMSET', key, 'tokens', tokens, 'refilled_ms', refilled)
	redis.call('EXPIRE', key, ttl_s)
	return { tokens, wait_ms }
`)

// NewTokenBucket throttles checkout submissions per client IP.  The
// checkout form is anonymous and triggers a paid provider call, so the
// bucket keys on address alone.  Redis being down fails open: losing the
// limit briefly is better than refusing every buyer.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip

			ctx := c.Request().Context()
			res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Burst,
				cfg.RefillEvery.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 2 {
				c.Logger().Warnf("ratelimit: script failed for %s: %v", key, err)
				return next(c)
			}
			remaining, waitMs := res[0], res[1]

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if waitMs > 0 {
				secs := int(math.Ceil(float64(waitMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too many checkout attempts, please wait and try again",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}
