package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// meterWithReader builds a meter provider on a manual reader so tests can
// pull recorded data points on demand.
func meterWithReader(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func metricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// requestCount sums the counter across all attribute sets.
func requestCount(t *testing.T, rm metricdata.ResourceMetrics) int64 {
	t.Helper()

	m := metricByName(rm, "http_server_request_total")
	require.NotNil(t, m, "http_server_request_total not recorded")
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "counter should carry Sum data")

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHTTPMetrics_NoopWhenUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Disabled config and a nil provider both degrade to pass-through.
	for _, cfg := range []HTTPMetricsConfig{
		{Enabled: false},
		{Enabled: true, MeterProvider: nil},
	} {
		router := gin.New()
		router.Use(HTTPMetrics(cfg))
		router.GET("/api/v1/vehicles", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"items": []string{}})
		})

		w := serve(router, http.MethodGet, "/api/v1/vehicles")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHTTPMetricsWithMeter_RecordsCountAndDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/leads", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	for range 3 {
		w := serve(router, http.MethodGet, "/api/v1/leads")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	rm := collect(t, reader)
	assert.Equal(t, int64(3), requestCount(t, rm))
	require.NotNil(t, metricByName(rm, "http_server_request_duration_seconds"))
}

func TestHTTPMetricsWithMeter_MixedStatusAndMethods(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/contracts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})
	router.POST("/api/v1/contracts", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": "K-2026-0001"})
	})
	router.GET("/api/v1/contracts/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	serve(router, http.MethodGet, "/api/v1/contracts")
	serve(router, http.MethodPost, "/api/v1/contracts")
	serve(router, http.MethodGet, "/api/v1/contracts/missing")
	serve(router, http.MethodGet, "/api/v1/contracts")

	// Every request counts once, regardless of method or status.
	assert.Equal(t, int64(4), requestCount(t, collect(t, reader)))
}

func TestHTTPMetricsWithMeter_Duration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/documents/render", func(c *gin.Context) {
		time.Sleep(50 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"status": "rendered"})
	})

	w := serve(router, http.MethodGet, "/api/v1/documents/render")
	assert.Equal(t, http.StatusOK, w.Code)

	m := metricByName(collect(t, reader), "http_server_request_duration_seconds")
	require.NotNil(t, m)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Greater(t, hist.DataPoints[0].Sum, 0.05)
}

func TestHTTPMetricsWithMeter_RequestAndResponseSize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.POST("/api/v1/customers", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": "cust-1", "name": "Autohaus Nord GmbH"})
	})

	body := strings.NewReader(`{"name":"Autohaus Nord GmbH","type":"business"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/customers", body)
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(body.Len())
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	rm := collect(t, reader)
	for _, name := range []string{"http_server_request_size_bytes", "http_server_response_size_bytes"} {
		m := metricByName(rm, name)
		require.NotNil(t, m, "%s not recorded", name)
		hist, ok := m.Data.(metricdata.Histogram[float64])
		require.True(t, ok)
		require.Len(t, hist.DataPoints, 1)
		assert.Greater(t, hist.DataPoints[0].Sum, float64(0), name)
	}
}

func TestHTTPMetricsWithMeter_ActiveRequestsDrainToZero(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	serve(router, http.MethodGet, "/api/v1/vehicles")

	m := metricByName(collect(t, reader), "http_server_active_requests")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	if len(sum.DataPoints) > 0 {
		assert.Equal(t, int64(0), sum.DataPoints[0].Value)
	}
}

func TestHTTPMetricsWithMeter_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), false))
	router.GET("/api/v1/vehicles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	w := serve(router, http.MethodGet, "/api/v1/vehicles")
	assert.Equal(t, http.StatusOK, w.Code)

	rm := collect(t, reader)
	assert.Nil(t, metricByName(rm, "http_server_request_total"))
}

func TestHTTPMetricsWithMeter_RouteLabelUsesPattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mp, reader := meterWithReader(t)

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(mp.Meter("http.server"), true))
	router.GET("/api/v1/vehicles/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	// Distinct IDs must collapse into a single series for the pattern.
	for _, id := range []string{"1", "2", "abc", "xyz"} {
		w := serve(router, http.MethodGet, "/api/v1/vehicles/"+id)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	m := metricByName(collect(t, reader), "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(4), sum.DataPoints[0].Value)

	found := false
	for _, attr := range sum.DataPoints[0].Attributes.ToSlice() {
		if string(attr.Key) == "http.route" {
			assert.Equal(t, "/api/v1/vehicles/:id", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found, "http.route attribute not found")
}

func TestGetRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() == http.StatusNotFound {
			assert.Equal(t, "unknown", getRoutePattern(c))
		}
	})
	router.GET("/api/v1/vehicles/:id", func(c *gin.Context) {
		assert.Equal(t, "/api/v1/vehicles/:id", getRoutePattern(c))
		c.Status(http.StatusOK)
	})

	w := serve(router, http.MethodGet, "/api/v1/vehicles/123")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/nonexistent")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRequestSize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		contentLength int64
		want          int64
	}{
		{"with content length", 100, 100},
		{"zero content length", 0, 0},
		{"negative content length", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
			req, _ := http.NewRequest(http.MethodPost, "/api/v1/vehicles", nil)
			req.ContentLength = tt.contentLength
			ctx.Request = req

			assert.Equal(t, tt.want, getRequestSize(ctx))
		})
	}
}

func TestHTTPMetricsStatusGroup(t *testing.T) {
	tests := []struct {
		statusCode int
		want       string
	}{
		{200, "2xx"},
		{299, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{499, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{600, "5xx"}, // anything >= 500 counts as 5xx
		{100, "other"},
		{0, "other"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPMetricsStatusGroup(tt.statusCode), "status %d", tt.statusCode)
	}
}

func TestParseStatusCode(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"200", 200},
		{"404", 404},
		{"500", 500},
		{"invalid", 0},
		{"", 0},
		{"12.34", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatusCode(tt.input), "input %q", tt.input)
	}
}

func TestHTTPMetricsResponseWriter_CountsBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	rw := &HTTPMetricsResponseWriter{ResponseWriter: ctx.Writer}

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = rw.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	assert.Equal(t, 11, rw.BytesWritten())
}

func TestDefaultHTTPMetricsConfig(t *testing.T) {
	cfg := DefaultHTTPMetricsConfig()

	assert.Equal(t, "dms-backend", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Nil(t, cfg.MeterProvider)
}
