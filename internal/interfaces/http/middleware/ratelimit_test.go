package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// loginRouter wires a POST /login route behind the given middleware.
func loginRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

// postLogin issues a login request from the given client address.
func postLogin(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		for i := range 5 {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for range 3 {
			assert.True(t, limiter.Allow("client2"))
		}
		assert.False(t, limiter.Allow("client2"))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("client3"))
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("remaining returns correct count", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("newclient"))

		limiter.Allow("newclient")
		limiter.Allow("newclient")

		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)
		var wg sync.WaitGroup
		allowed := 0
		var mu sync.Mutex

		for range 150 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent-client") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for range 2 {
		w := serve(router, "GET", "/api/v1/vehicles")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(router, "GET", "/api/v1/vehicles")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(1, time.Minute)
	keyFunc := func(c *gin.Context) string {
		return c.GetHeader("X-User-ID")
	}

	router := gin.New()
	router.Use(RateLimitByKey(limiter, keyFunc))
	router.GET("/api/v1/leads", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	request := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/v1/leads", nil)
		req.Header.Set("X-User-ID", userID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, request("user-verkauf-3").Code)
	assert.Equal(t, http.StatusTooManyRequests, request("user-verkauf-3").Code)

	// A different key still has its own budget.
	assert.Equal(t, http.StatusOK, request("user-werkstatt-1").Code)
}

func TestAuthRateLimit(t *testing.T) {
	const clientAddr = "192.168.1.100:12345"

	t.Run("allows attempts within limit", func(t *testing.T) {
		router := loginRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)))

		for i := range 5 {
			w := postLogin(router, clientAddr)
			assert.Equal(t, http.StatusOK, w.Code, "attempt %d should be allowed", i+1)
		}
	})

	t.Run("blocks with AUTH_RATE_LIMITED", func(t *testing.T) {
		router := loginRouter(AuthRateLimit(NewRateLimiter(3, time.Minute)))

		for range 3 {
			assert.Equal(t, http.StatusOK, postLogin(router, clientAddr).Code)
		}

		w := postLogin(router, clientAddr)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMITED")
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		router := loginRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)))

		w := postLogin(router, clientAddr)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("sets Retry-After when blocked", func(t *testing.T) {
		router := loginRouter(AuthRateLimit(NewRateLimiter(1, time.Minute)))

		postLogin(router, clientAddr)
		w := postLogin(router, clientAddr)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("separate limits per IP address", func(t *testing.T) {
		router := loginRouter(AuthRateLimit(NewRateLimiter(2, time.Minute)))

		for range 2 {
			assert.Equal(t, http.StatusOK, postLogin(router, "192.168.1.1:12345").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, postLogin(router, "192.168.1.1:12345").Code)

		assert.Equal(t, http.StatusOK, postLogin(router, "192.168.1.2:12345").Code)
	})

	t.Run("auth prefix isolates a shared limiter from the global one", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		globalLimiter := NewRateLimiter(100, time.Minute)
		authLimiter := NewRateLimiter(2, time.Minute)

		router := gin.New()
		authGroup := router.Group("/auth")
		authGroup.Use(AuthRateLimit(authLimiter))
		authGroup.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		router.Use(RateLimit(globalLimiter))
		router.GET("/api/data", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": "test"})
		})

		exhaust := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = clientAddr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		assert.Equal(t, http.StatusOK, exhaust().Code)
		assert.Equal(t, http.StatusOK, exhaust().Code)
		assert.Equal(t, http.StatusTooManyRequests, exhaust().Code)

		// The general API keeps serving the same client.
		req := httptest.NewRequest("GET", "/api/data", nil)
		req.RemoteAddr = clientAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
