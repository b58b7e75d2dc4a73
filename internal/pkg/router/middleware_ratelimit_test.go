package router

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Unix(1_700_000_000, 0)
	// httptest requests come from 192.0.2.1
	r := newTestRouter(t, "app:\n  server:\n    trusted_proxies: [192.0.2.0/24]\n", nil)
	r.POST("/api/send-otp", func(*Request) (any, error) { return echoResponse{}, nil },
		RateLimit(client, RateLimitConfig{Requests: 2, Window: time.Minute, Now: func() time.Time { return now }}))

	for i := range 2 {
		rec, _ := do(t, r, http.MethodPost, "/api/send-otp", `{}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get(HeaderRateLimitLimit))
		assert.Equal(t, []string{"1", "0"}[i], rec.Header().Get(HeaderRateLimitRemaining))
	}

	rec, body := do(t, r, http.MethodPost, "/api/send-otp", `{}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests", body["error"])
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// a different client has its own window
	rec, _ = do(t, r, http.MethodPost, "/api/send-otp", `{}`, map[string]string{"X-Real-IP": "198.51.100.7"})
	assert.Equal(t, http.StatusOK, rec.Code)

	mr.FastForward(time.Minute + time.Second)
	rec, _ = do(t, r, http.MethodPost, "/api/send-otp", `{}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	r := newTestRouter(t, "app: {}", nil)
	r.POST("/api/verify-otp", func(*Request) (any, error) { return echoResponse{}, nil },
		RateLimit(client, RateLimitConfig{Requests: 1, Window: time.Minute}))

	for range 3 {
		rec, _ := do(t, r, http.MethodPost, "/api/verify-otp", `{}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(HeaderRateLimitLimit))
	}
}

func TestRateLimit_IgnoresSpoofedHeadersFromUntrustedPeer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := newTestRouter(t, "app: {}", nil)
	r.POST("/api/verify-otp", func(*Request) (any, error) { return echoResponse{}, nil },
		RateLimit(client, RateLimitConfig{Requests: 1, Window: time.Minute}))

	rec, _ := do(t, r, http.MethodPost, "/api/verify-otp", `{}`, map[string]string{"X-Forwarded-For": "203.0.113.1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/api/verify-otp", `{}`, map[string]string{"X-Forwarded-For": "203.0.113.2"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
