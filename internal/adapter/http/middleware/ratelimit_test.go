package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisStore "ledger-service/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedRouter(t *testing.T, rule RateLimitRule) *gin.Engine {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisStore.NewRateLimitStore(client)

	r := gin.New()
	r.POST("/clients/:id/transactions",
		RateLimiter(store, "transactions", rule, zerolog.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_SetsHeaders(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 5, Window: time.Minute})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_DegradedModeAllows(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisStore.NewRateLimitStore(client)

	r := gin.New()
	r.POST("/clients/:id/transactions",
		RateLimiter(store, "transactions", RateLimitRule{Limit: 1, Window: time.Minute}, zerolog.Nop()),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	// Redis outage must not block traffic.
	mr.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_KeyScopedPerAccount(t *testing.T) {
	r := newRateLimitedRouter(t, RateLimitRule{Limit: 1, Window: time.Minute})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/1/transactions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// A different account id gets its own window.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/clients/2/transactions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
