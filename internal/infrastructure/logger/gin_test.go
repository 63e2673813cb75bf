package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// requestLog finds the access-log entry among everything the middleware wrote.
func requestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP Request" {
			return entry
		}
	}
	t.Fatal("no HTTP Request entry logged")
	return observer.LoggedEntry{}
}

func serveVehicleList(status int) (*gin.Engine, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		c.JSON(status, gin.H{"success": status < 400})
	})
	return router, recorded
}

func TestGinMiddleware(t *testing.T) {
	router, recorded := serveVehicleList(http.StatusOK)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vehicles", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	entry := requestLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
}

func TestGinMiddleware_WithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	// Simulates the RequestID middleware running in front.
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-dms-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/api/v1/contracts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/contracts", nil)
	router.ServeHTTP(w, req)

	entry := requestLog(t, recorded)
	fields := entry.ContextMap()
	assert.Equal(t, "req-dms-123", fields["request_id"])
}

func TestGinMiddleware_StatusLevels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{"2xx logs at info", http.StatusOK, zapcore.InfoLevel},
		{"4xx logs at warn", http.StatusConflict, zapcore.WarnLevel},
		{"5xx logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, recorded := serveVehicleList(tt.status)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/api/v1/vehicles", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			entry := requestLog(t, recorded)
			assert.Equal(t, tt.wantLevel, entry.Level)
		})
	}
}

func TestGinMiddleware_WithQuery(t *testing.T) {
	router, recorded := serveVehicleList(http.StatusOK)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vehicles?status=ACTIVE&page=2", nil)
	router.ServeHTTP(w, req)

	entry := requestLog(t, recorded)
	query, ok := entry.ContextMap()["query"].(string)
	require.True(t, ok, "query should be in log fields")
	assert.Contains(t, query, "status=ACTIVE")
}

func TestGinMiddleware_LogsCorrectFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.POST("/api/v1/leads", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/leads", nil)
	req.Header.Set("User-Agent", "dms-client/1.0")
	router.ServeHTTP(w, req)

	entry := requestLog(t, recorded)
	fields := entry.ContextMap()
	for _, key := range []string{"status", "latency", "client_ip", "user_agent", "method", "path"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/leads", fields["path"])
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/api/v1/invoices", func(c *gin.Context) {
		panic("renderer exploded")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/invoices", nil)

	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "Panic recovered")
}

func TestGetGinLogger(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)

	var handlerLogger *zap.Logger
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		handlerLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vehicles", nil)
	router.ServeHTTP(w, req)

	assert.NotNil(t, handlerLogger)
}

func TestGetGinLogger_NotSet(t *testing.T) {
	var handlerLogger *zap.Logger
	router := gin.New()
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		handlerLogger = GetGinLogger(c)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/vehicles", nil)
	router.ServeHTTP(w, req)

	// Falls back to a no-op logger rather than nil.
	require.NotNil(t, handlerLogger)
	assert.NotPanics(t, func() {
		handlerLogger.Info("still usable")
	})
}
