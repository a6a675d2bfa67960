package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-account-service/internal/config"
)

func bucketConfig(capacity int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func newBucket(t *testing.T, capacity int) echo.MiddlewareFunc {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenBucket(bucketConfig(capacity), rdb)
}

func fireLogin(e *echo.Echo, h echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:12345"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/auth/login")
	_ = h(c)
	return rec
}

func TestTokenBucketBlocksWhenDrained(t *testing.T) {
	e := echo.New()
	h := newBucket(t, 2)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, fireLogin(e, h).Code)
	assert.Equal(t, http.StatusOK, fireLogin(e, h).Code)

	rec := fireLogin(e, h)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestTokenBucketKeysPerIP(t *testing.T) {
	e := echo.New()
	h := newBucket(t, 1)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	fire := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/auth/login")
		_ = h(c)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, fire("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, fire("198.51.100.1"))
	assert.Equal(t, http.StatusOK, fire("198.51.100.2"), "other clients keep their own bucket")
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	cfg := bucketConfig(0)
	cfg.Enabled = false

	h := NewTokenBucket(cfg, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, fireLogin(e, h).Code)
	}
}

func TestTokenBucketFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := NewTokenBucket(bucketConfig(1), rdb)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	mr.Close()

	e := echo.New()
	assert.Equal(t, http.StatusOK, fireLogin(e, h).Code, "limiter must not take the API down with it")
}
