package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// setupTestTracer installs a recording tracer provider globally and restores
// the previous one when the test ends.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

// tracedRouter builds a router with the given middleware and one GET route
// responding with the given status.
func tracedRouter(status int, mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mws...)
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		c.JSON(status, gin.H{"status": status})
	})
	return router
}

// spanNamed finds the ended span with the given name, or fails the test.
func spanNamed(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	t.Fatalf("span %q not recorded", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	router := tracedRouter(http.StatusOK, TracingWithConfig(TracingConfig{Enabled: false}))

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingWithConfig_RecordsHTTPSpan(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}))

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusOK, w.Code)

	spanNamed(t, sr, "GET /api/v1/vehicles")
}

func TestTracingWithConfig_RequestIDOnSpan(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusOK,
		RequestID(),
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}),
		TracingAttributeInjector(),
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("X-Request-ID", "req-dms-7")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	span := spanNamed(t, sr, "GET /api/v1/vehicles")
	got, ok := spanAttr(span, "request_id")
	require.True(t, ok, "request_id attribute missing")
	assert.Equal(t, "req-dms-7", got)
}

func TestTracingAttributeInjector_UserIDFromClaims(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}),
		// Stands in for the JWT middleware populating the context.
		func(c *gin.Context) {
			c.Set(JWTUserIDKey, "user-verkauf-3")
			c.Next()
		},
		TracingAttributeInjector(),
	)

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	require.Equal(t, http.StatusOK, w.Code)

	span := spanNamed(t, sr, "GET /api/v1/vehicles")
	got, ok := spanAttr(span, "user_id")
	require.True(t, ok, "user_id attribute missing")
	assert.Equal(t, "user-verkauf-3", got)
}

func TestSpanErrorMarker_StatusMapping(t *testing.T) {
	tests := []struct {
		status          int
		wantDescription string
	}{
		{http.StatusBadRequest, "Client Error"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusForbidden, "Forbidden"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusConflict, "Client Error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantDescription, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := tracedRouter(tt.status,
				TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}),
				SpanErrorMarker(),
			)

			w := serve(router, http.MethodGet, "/api/v1/vehicles")
			require.Equal(t, tt.status, w.Code)

			span := spanNamed(t, sr, "GET /api/v1/vehicles")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.wantDescription, span.Status().Description)
		})
	}
}

func TestSpanErrorMarker_ServerError(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusInternalServerError,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}),
		SpanErrorMarker(),
	)

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// otelgin may mark 5xx itself; only the error code is guaranteed.
	span := spanNamed(t, sr, "GET /api/v1/vehicles")
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker_SuccessLeftUnset(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusOK,
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "dms-backend"}),
		SpanErrorMarker(),
	)

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	require.Equal(t, http.StatusOK, w.Code)

	span := spanNamed(t, sr, "GET /api/v1/vehicles")
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker_NoRecordingSpan(t *testing.T) {
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(noop.NewTracerProvider())
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	router := tracedRouter(http.StatusInternalServerError, SpanErrorMarker())

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTracingAttributeInjector_NoRecordingSpan(t *testing.T) {
	router := tracedRouter(http.StatusOK, TracingAttributeInjector())

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_DefaultConfig(t *testing.T) {
	sr := setupTestTracer(t)

	router := tracedRouter(http.StatusOK, Tracing())

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, sr.Ended())
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.Equal(t, "dms-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("from gin context", func(t *testing.T) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
		ctx.Set("request_id", "req-dms-7")

		assert.Equal(t, "req-dms-7", getRequestID(ctx))
	})

	t.Run("from header", func(t *testing.T) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
		ctx.Request.Header.Set("X-Request-ID", "req-header-1")

		assert.Equal(t, "req-header-1", getRequestID(ctx))
	})

	t.Run("oversized header truncated", func(t *testing.T) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
		ctx.Request.Header.Set("X-Request-ID", strings.Repeat("a", 200))

		assert.Len(t, getRequestID(ctx), MaxRequestIDLength)
	})
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("from claims", func(t *testing.T) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Set(JWTUserIDKey, "user-verkauf-3")

		assert.Equal(t, "user-verkauf-3", getUserID(ctx))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.Empty(t, getUserID(ctx))
	})
}
