// Database tracing: otelgorm spans plus slow-query and error annotation
// on top of them.
package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool          // Enable database tracing
	LogFullSQL       bool          // Include full SQL statements in spans (dev only, security risk in prod)
	SlowQueryThresh  time.Duration // Threshold for marking queries as slow (default: 200ms)
	DBSystem         string        // Database system name (default: "postgresql")
	WithoutVariables bool          // Exclude query variables from SQL statement (for security)
}

// DefaultDBTracingConfig returns default configuration for database tracing.
// Customer and vehicle data ends up in bind variables, so those stay out of
// spans unless explicitly enabled.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		LogFullSQL:       false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingPlugin wraps otelgorm with slow query detection and error marking.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin with the given configuration.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm registers the otelgorm plugin plus the timing callbacks
// on the GORM DB instance. No-op when tracing is disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerTimingCallbacks(db, "otel_timing", stampQueryStart); err != nil {
		return err
	}
	if err := registerCompletionCallbacks(db, "otel_slow_query", p.slowQueryCallback); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)

	return nil
}

// slowQueryCallback annotates the active span once a statement completes.
func (p *DBTracingPlugin) slowQueryCallback(db *gorm.DB) {
	annotateSpan(db, p.config.SlowQueryThresh)
}

// stampQueryStart records the statement start time for elapsed-time checks.
func stampQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// annotateSpan adds rows-affected, table, error status and the slow-query
// event to the span recording this statement, if there is one.
func annotateSpan(db *gorm.DB, slowQueryThresh time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// A miss on FindByID is normal control flow, not a span error.
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > slowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", slowQueryThresh.Milliseconds()),
			))
		}
	}
}

// registerTimingCallbacks hooks fn in before every operation type.
func registerTimingCallbacks(db *gorm.DB, prefix string, fn func(*gorm.DB)) error {
	for _, register := range []func() error{
		func() error {
			return db.Callback().Create().Before("gorm:create").Register(prefix+":before_create", fn)
		},
		func() error {
			return db.Callback().Query().Before("gorm:query").Register(prefix+":before_query", fn)
		},
		func() error {
			return db.Callback().Update().Before("gorm:update").Register(prefix+":before_update", fn)
		},
		func() error {
			return db.Callback().Delete().Before("gorm:delete").Register(prefix+":before_delete", fn)
		},
		func() error {
			return db.Callback().Row().Before("gorm:row").Register(prefix+":before_row", fn)
		},
		func() error {
			return db.Callback().Raw().Before("gorm:raw").Register(prefix+":before_raw", fn)
		},
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// registerCompletionCallbacks hooks fn in after every operation type.
func registerCompletionCallbacks(db *gorm.DB, prefix string, fn func(*gorm.DB)) error {
	for _, register := range []func() error{
		func() error {
			return db.Callback().Create().After("gorm:create").Register(prefix+":create", fn)
		},
		func() error {
			return db.Callback().Query().After("gorm:query").Register(prefix+":query", fn)
		},
		func() error {
			return db.Callback().Update().After("gorm:update").Register(prefix+":update", fn)
		},
		func() error {
			return db.Callback().Delete().After("gorm:delete").Register(prefix+":delete", fn)
		},
		func() error {
			return db.Callback().Row().After("gorm:row").Register(prefix+":row", fn)
		},
		func() error {
			return db.Callback().Raw().After("gorm:raw").Register(prefix+":raw", fn)
		},
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// queryStartTimeKey is the context key for storing query start time.
type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// WithQueryStartTime returns a context with the query start time set.
// This is used by the slow query callback to calculate elapsed time.
func WithQueryStartTime(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}

// DBTracingCallback is the standalone variant of the timing callbacks for
// setups that bring their own span creation instead of otelgorm.
type DBTracingCallback struct {
	slowQueryThresh time.Duration
}

// NewDBTracingCallback creates a new callback for tracking query timing.
func NewDBTracingCallback(slowQueryThresh time.Duration) *DBTracingCallback {
	return &DBTracingCallback{
		slowQueryThresh: slowQueryThresh,
	}
}

// BeforeCallback sets the query start time in context.
func (c *DBTracingCallback) BeforeCallback(db *gorm.DB) {
	stampQueryStart(db)
}

// AfterCallback checks for slow queries and adds attributes to the span.
func (c *DBTracingCallback) AfterCallback(db *gorm.DB) {
	annotateSpan(db, c.slowQueryThresh)
}

// RegisterCallbacks registers the before and after callbacks on the GORM DB instance.
func (c *DBTracingCallback) RegisterCallbacks(db *gorm.DB) error {
	if err := registerTimingCallbacks(db, "otel_timing", c.BeforeCallback); err != nil {
		return err
	}
	return registerCompletionCallbacks(db, "otel_timing:after", c.AfterCallback)
}
