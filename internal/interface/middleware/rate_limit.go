package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/vpms/pkg/response"
)

const rateKeyPrefix = "vpms:rl:"

// clientIP prefers the address resolved by RealIP.
func clientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIP); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + clientIP(c) }
}

// KeyByIPAndPath gives every route its own bucket per IP.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "route:" + routeOf(c) + ":ip:" + clientIP(c) }
}

// KeyByUserID counts authenticated callers per user, anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetInt64(CtxUserID); uid > 0 {
			return "user:" + strconv.FormatInt(uid, 10)
		}
		return "anon:ip:" + clientIP(c)
	}
}

// AllowFunc returns true for requests that skip the limit.
type AllowFunc func(*gin.Context) bool

// hitScript counts a hit and returns {count, pttl}. The window starts on the
// first hit.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// Limiter is a fixed-window request counter kept in Redis.
type Limiter struct {
	rdb    *redis.Client
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
}

func (l *Limiter) hit(ctx context.Context, key string) (int, time.Duration, error) {
	res, err := hitScript.Run(ctx, l.rdb, []string{rateKeyPrefix + key}, l.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, redis.Nil
	}
	reset := time.Duration(res[1]) * time.Millisecond
	if reset < 0 {
		reset = 0
	}
	return int(res[0]), reset, nil
}

// Handler fails open when Redis errors. OPTIONS preflights are never counted.
func (l *Limiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (l.Allow != nil && l.Allow(c)) {
			c.Next()
			return
		}
		count, reset, err := l.hit(c.Request.Context(), l.Key(c))
		if err != nil {
			c.Next()
			return
		}

		resetSec := int((reset + time.Second - 1) / time.Second)
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > l.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

// RateLimit builds a Limiter handler. Without Redis, or with a non-positive
// limit or window, every request passes.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	l := &Limiter{rdb: rdb, Max: limit, Window: window, Key: keyFn, Allow: allow}
	return l.Handler()
}
