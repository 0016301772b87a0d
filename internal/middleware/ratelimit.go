package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/config"
)

// takeToken refills the bucket at KEYS[1] for the elapsed intervals and
// takes one token.  ARGV: now_ms, capacity, refill_tokens, interval_ms,
// ttl_s.  Returns {allowed, remaining, retry_after_ms}.
var takeToken = redis.NewScript(`
local now, cap, step, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens, at = tonumber(b[1]), tonumber(b[2])
if tokens == nil or at == nil then
  tokens, at = cap, now
end
local n = math.floor(math.max(0, now - at) / every)
if n > 0 then
  tokens = math.min(cap, tokens + n * step)
  at = at + n * every
end
local allowed, wait = 0, 0
if tokens > 0 then
  allowed, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - at))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {allowed, tokens, wait}
`)

// NewTokenBucket limits requests per key with a Redis token bucket.  A
// disabled config or a nil client yields a pass-through, and Redis errors
// let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if log == nil {
		log = zap.NewNop()
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := takeToken.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(), int64(cfg.TTL/time.Second)).Int64Slice()
			if err != nil || len(res) != 3 {
				log.Warn("ratelimit unavailable", zap.String("key", key), zap.Error(err))
				return next(c)
			}
			allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				h.Set("Retry-After", strconv.FormatInt((waitMs+999)/1000, 10))
				if cfg.Debug {
					log.Info("ratelimit block", zap.String("key", key), zap.Int64("retry_ms", waitMs))
				}
				return apperror.RateLimited()
			}
			return next(c)
		}
	}
}

// buildRateKey scopes the bucket.  "user" keys by session user (or "anon"),
// "ip" by client address, and anything else by address and route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "user":
		parts = append(parts, "user", userID(c))
	case "ip":
		parts = append(parts, "ip", ip)
	default:
		parts = append(parts, "ip", ip, "route", c.Request().Method+" "+c.Path())
	}
	return strings.Join(parts, ":")
}
