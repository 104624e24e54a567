package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-group-booking/internal/config"
)

// tokenBucketScript refills and takes one token atomically.  State is a
// hash {tokens, last_refill_ms}; it returns {allowed, remaining,
// retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// Decision is the limiter verdict for one request.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter is a Redis backed token bucket shared by every server
// instance.
type RateLimiter struct {
	cfg config.RateLimit
	rdb *redis.Client
	now func() time.Time
}

// NewRateLimiter constructs a RateLimiter.  rdb may be nil, in which
// case Middleware lets every request through.
func NewRateLimiter(cfg config.RateLimit, rdb *redis.Client) *RateLimiter {
	return &RateLimiter{cfg: cfg, rdb: rdb, now: time.Now}
}

// Allow takes one token from the bucket stored under key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := []any{
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		int64(l.cfg.TTL / time.Second),
	}
	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{key}, args...).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}
	return Decision{
		Allowed:    asInt64(vals[0]) == 1,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

// Middleware rejects requests with 429 once their bucket is empty.  Redis
// failures let the request through.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	if !l.cfg.Enabled || l.rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := l.key(c)
			d, err := l.Allow(c.Request().Context(), key)
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			if l.cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				h.Set("Retry-After", strconv.Itoa(secs))
				if l.cfg.Debug {
					c.Logger().Infof("ratelimit: block key=%s retry=%s", key, d.RetryAfter)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func (l *RateLimiter) key(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()
	parts := []string{l.cfg.Prefix}
	switch strings.ToLower(l.cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
