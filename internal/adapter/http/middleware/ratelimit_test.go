package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-trade-ledger/internal/adapter/http/middleware"
	redisStore "stock-trade-ledger/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := redisStore.NewRateLimitStore(client)

	rule := middleware.RateLimitRule{Limit: 3, Window: time.Minute}

	r := gin.New()
	// Stand-in for JWTAuth: the X-Test-User header becomes the user id.
	r.Use(func(c *gin.Context) {
		switch c.GetHeader("X-Test-User") {
		case "1":
			c.Set(middleware.CtxUserID, int64(1))
		case "2":
			c.Set(middleware.CtxUserID, int64(2))
		}
		c.Next()
	})
	r.POST("/orders", middleware.RateLimiter(store, "orders", rule, zerolog.Nop()), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"status": "ok"})
	})
	return r, mr
}

func post(r *gin.Engine, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		w := post(router, "1")
		assert.Equal(t, http.StatusCreated, w.Code, "request %d should succeed", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, post(router, "1").Code)
	}

	w := post(router, "1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_001")
}

func TestRateLimiter_KeyedPerUser(t *testing.T) {
	router, _ := setupRateLimitRouter(t)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, post(router, "1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(router, "1").Code)

	// user 2 and anonymous callers have independent counters
	assert.Equal(t, http.StatusCreated, post(router, "2").Code)
	assert.Equal(t, http.StatusCreated, post(router, "").Code)
}

func TestRateLimiter_StoreDownAllowsRequest(t *testing.T) {
	router, mr := setupRateLimitRouter(t)
	mr.Close()

	w := post(router, "1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestDefaultRateLimitRules(t *testing.T) {
	rules := middleware.DefaultRateLimitRules()
	assert.Equal(t, int64(30), rules["orders"].Limit)
	assert.Equal(t, int64(120), rules["orders_preview"].Limit)
	assert.Equal(t, int64(120), rules["read"].Limit)
	for name, rule := range rules {
		assert.Equal(t, time.Minute, rule.Window, name)
	}
}
