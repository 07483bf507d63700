package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(cfg))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func get(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareAllowsWithinBurst(t *testing.T) {
	router := newLimitedRouter(Config{
		RPS:             1,
		Burst:           3,
		CleanupInterval: time.Minute,
		MaxAge:          time.Minute,
	})

	for i := 0; i < 3; i++ {
		rec := get(router, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestMiddlewareLimitsBeyondBurst(t *testing.T) {
	router := newLimitedRouter(Config{
		RPS:             1,
		Burst:           1,
		CleanupInterval: time.Minute,
		MaxAge:          time.Minute,
	})

	require.Equal(t, http.StatusOK, get(router, "10.0.0.2").Code)

	rec := get(router, "10.0.0.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestMiddlewareTracksClientsIndependently(t *testing.T) {
	router := newLimitedRouter(Config{
		RPS:             1,
		Burst:           1,
		CleanupInterval: time.Minute,
		MaxAge:          time.Minute,
	})

	require.Equal(t, http.StatusOK, get(router, "10.0.0.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "10.0.0.3").Code)

	// a different client still has its full burst
	assert.Equal(t, http.StatusOK, get(router, "10.0.0.4").Code)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10.0, cfg.RPS)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 10*time.Minute, cfg.MaxAge)
}
