package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"

	rateLimitKeyPrefix = "xceltrack:ratelimit:"
)

var errRateLimitReply = errors.New("router: unexpected rate limit reply")

// rateLimitScript counts a request inside a fixed window and returns
// {allowed, remaining, ttl_seconds}.
var rateLimitScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local limit = tonumber(ARGV[1])
if current >= limit then
	return {0, 0, redis.call("TTL", KEYS[1])}
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], tonumber(ARGV[2]))
end
return {1, limit - current, redis.call("TTL", KEYS[1])}
`)

// RateLimitConfig bounds each client IP to Requests per Window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Now      func() time.Time
}

// RateLimit is a per-route middleware backed by a fixed window counter in
// redis. Redis failures let the request through.
func RateLimit(client redis.Scripter, cfg RateLimitConfig) Middleware {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	window := int(cfg.Window / time.Second)
	if window < 1 {
		window = 1
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil || cfg.Requests <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := rateLimitKeyPrefix + matchedRoutePath(r) + ":" + r.RemoteAddr
			allowed, remaining, ttl, err := hitRateLimit(r.Context(), client, key, cfg.Requests, window)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limit check failed, allowing request", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if ttl < 0 {
				ttl = int64(window)
			}
			w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(cfg.Requests))
			w.Header().Set(HeaderRateLimitRemaining, strconv.FormatInt(remaining, 10))
			w.Header().Set(HeaderRateLimitReset, strconv.FormatInt(cfg.Now().Add(time.Duration(ttl)*time.Second).Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(ttl, 10))
				writeJSON(w, errorResponse{Error: "Too many requests"}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hitRateLimit(ctx context.Context, client redis.Scripter, key string, limit, window int) (bool, int64, int64, error) {
	res, err := rateLimitScript.Run(ctx, client, []string{key}, limit, window).Int64Slice()
	if err != nil {
		return false, 0, 0, err
	}
	if len(res) != 3 {
		return false, 0, 0, errRateLimitReply
	}

	return res[0] == 1, res[1], res[2], nil
}
