package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// jsonCaptureLogger writes JSON entries into a buffer for assertions.
func jsonCaptureLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

// noopSpanContext starts a span on the no-op tracer. Its span context is
// deliberately invalid, which the correlation helpers must tolerate.
func noopSpanContext(t *testing.T) (context.Context, trace.Span) {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("dms-backend-test")
	return tracer.Start(context.Background(), "vehicle.list")
}

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)
	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext_Fallbacks(t *testing.T) {
	// Missing or mistyped values yield a usable no-op logger.
	t.Run("empty context", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("orphaned entry")
			logger.With(zap.String("vin", "WBA123")).Warn("still fine")
		})
	})

	t.Run("wrong type under key", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)
		assert.NotPanics(t, func() { logger.Info("ok") })
	})
}

func TestWithRequestID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithRequestID(context.Background(), logger, "req-dms-7")

	assert.NotNil(t, enriched)
	assert.Equal(t, "req-dms-7", GetRequestID(ctx))

	// The context carries the enriched logger, not the base one.
	assert.NotEqual(t, logger, enriched)
	assert.NotNil(t, FromContext(ctx))
}

func TestWithUserID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx, enriched := WithUserID(context.Background(), logger, "user-verkauf-3")

	assert.NotNil(t, enriched)
	assert.Equal(t, "user-verkauf-3", GetUserID(ctx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetUserID_NotFound(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}

func TestContextChaining(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	ctx, logger = WithRequestID(ctx, logger, "req-dms-7")
	ctx, logger = WithUserID(ctx, logger, "user-verkauf-3")

	assert.Equal(t, "req-dms-7", GetRequestID(ctx))
	assert.Equal(t, "user-verkauf-3", GetUserID(ctx))
	assert.NotNil(t, logger)
}

func TestContextKeys(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, RequestIDKey, UserIDKey)
	assert.NotEqual(t, LoggerKey, UserIDKey)
}

func TestMultipleWithRequestID(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, logger, "first-id")
	assert.Equal(t, "first-id", GetRequestID(ctx))

	// A later call overrides the earlier ID.
	ctx, _ = WithRequestID(ctx, logger, "second-id")
	assert.Equal(t, "second-id", GetRequestID(ctx))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	// Invalid span contexts also yield an empty ID instead of garbage.
	ctx, span := noopSpanContext(t)
	defer span.End()
	require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	assert.Empty(t, GetTraceID(ctx))
}

func TestGetSpanID(t *testing.T) {
	assert.Empty(t, GetSpanID(context.Background()))

	ctx, span := noopSpanContext(t)
	defer span.End()
	assert.Empty(t, GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	baseLogger := zap.NewNop()

	// Without a valid span the original logger comes back untouched.
	assert.Equal(t, baseLogger, WithTraceContext(context.Background(), baseLogger))

	ctx, span := noopSpanContext(t)
	defer span.End()
	assert.Equal(t, baseLogger, WithTraceContext(ctx, baseLogger))
}

func TestL_ReturnsContextLogger(t *testing.T) {
	cl := L(context.Background())

	require.NotNil(t, cl)
	assert.NotNil(t, cl.ctx)
	assert.NotNil(t, cl.logger)
}

func TestL_WithLoggerInContext(t *testing.T) {
	baseLogger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), baseLogger)
	cl := L(ctx)

	require.NotNil(t, cl)
	assert.NotNil(t, cl.logger)
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	baseLogger, err := NewForEnvironment("development")
	require.NoError(t, err)

	cl := WithLogger(context.Background(), baseLogger)

	require.NotNil(t, cl)
	assert.Equal(t, baseLogger, cl.logger)
}

func TestContextLogger_With(t *testing.T) {
	baseLogger, _ := jsonCaptureLogger()
	ctx := context.Background()
	cl := WithLogger(ctx, baseLogger)

	childCl := cl.With(zap.String("component", "allocator"))

	require.NotNil(t, childCl)
	assert.Equal(t, ctx, childCl.ctx)
	assert.NotEqual(t, baseLogger, childCl.logger)
}

func TestContextLogger_LogLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("debug message")
		cl.Info("info message")
		cl.Warn("warn message")
		cl.Error("error message")
	})
}

func TestContextLogger_ZapAndSugar(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	require.NotNil(t, cl.Zap())
	require.NotNil(t, cl.Sugar())
	assert.NotPanics(t, func() {
		cl.Zap().Info("plain")
		cl.Sugar().Infof("invoice %s rendered", "RE-2026-00042")
	})
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	baseLogger, buf := jsonCaptureLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-dms-7")
	ctx, _ = WithUserID(ctx, baseLogger, "user-verkauf-3")
	ctx = WithContext(ctx, baseLogger)

	L(ctx).Info("lead assigned", zap.String("lead_source", "mobile"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-dms-7"`)
	assert.Contains(t, output, `"user_id":"user-verkauf-3"`)
	assert.Contains(t, output, `"lead_source":"mobile"`)
	assert.Contains(t, output, `"msg":"lead assigned"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	baseLogger, buf := jsonCaptureLogger()

	WithLogger(context.Background(), baseLogger).Info("bare entry")

	// Absent context values must not show up as empty fields.
	output := buf.String()
	assert.Contains(t, output, `"msg":"bare entry"`)
	assert.NotContains(t, output, `"request_id":""`)
	assert.NotContains(t, output, `"user_id":""`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{
		ctx:    context.Background(),
		logger: nil,
	}

	assert.NotPanics(t, func() {
		cl.Info("test")
	})
}

func TestContextLogger_WithChaining(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop()).
		With(zap.String("component", "feed")).
		With(zap.String("feed_schema", "autoscout"))

	require.NotNil(t, cl)
	assert.NotPanics(t, func() {
		cl.Info("chained")
	})
}
