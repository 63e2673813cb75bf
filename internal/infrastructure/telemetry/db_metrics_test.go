package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newManualMeter returns a meter provider backed by a manual reader so tests
// can pull recorded data points on demand.
func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collectedMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) bool {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestNewDBMetrics(t *testing.T) {
	_, provider := newManualMeter(t)
	meter := provider.Meter("dbm")

	metrics, err := NewDBMetrics(meter, DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, metrics.poolConnections)
	assert.NotNil(t, metrics.poolConnectionsMax)
	assert.NotNil(t, metrics.queryTotal)
	assert.NotNil(t, metrics.queryDuration)
	assert.NotNil(t, metrics.slowQueryTotal)

	// Zero-value config falls back to defaults, nil logger to a nop.
	metrics, err = NewDBMetrics(meter, DBMetricsConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, metrics.config.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, metrics.config.PoolStatsInterval)
	assert.NotNil(t, metrics.logger)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("counts and times queries", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_fast"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "vehicles", 30*time.Millisecond, nil)

		assert.True(t, collectedMetric(t, reader, "db_query_total"))
		assert.True(t, collectedMetric(t, reader, "db_query_duration_seconds"))
	})

	t.Run("flags queries above the slow threshold", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_slow"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 100 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "contracts", 250*time.Millisecond, nil)

		assert.True(t, collectedMetric(t, reader, "db_slow_query_total"))
	})

	t.Run("leaves slow counter at zero below the threshold", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_under"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "invoices", 20*time.Millisecond, nil)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "db_slow_query_total" {
					continue
				}
				sum := m.Data.(metricdata.Sum[int64])
				for _, dp := range sum.DataPoints {
					assert.Equal(t, int64(0), dp.Value)
				}
			}
		}
	})

	t.Run("normalizes operation names", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_ops"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		// Mixed casing and an empty operation must all record cleanly.
		metrics.RecordQuery(ctx, "select", "leads", 5*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "Insert", "leads", 5*time.Millisecond, nil)
		metrics.RecordQuery(ctx, "", "leads", 5*time.Millisecond, nil)

		assert.True(t, collectedMetric(t, reader, "db_query_total"))
	})

	t.Run("records slow queries without a table name", func(t *testing.T) {
		reader, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_notable"), DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)

		metrics.RecordQuery(ctx, "SELECT", "", 120*time.Millisecond, nil)

		assert.True(t, collectedMetric(t, reader, "db_slow_query_total"))
	})
}

func TestDBMetrics_PoolStats(t *testing.T) {
	t.Run("reports pool gauges", func(t *testing.T) {
		reader, provider := newManualMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("dbm_pool"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: 50 * time.Millisecond,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		metrics.StartPoolStatsCollection(ctx)
		time.Sleep(100 * time.Millisecond)
		metrics.Stop()

		assert.True(t, collectedMetric(t, reader, "db_pool_connections_max"))
		assert.True(t, collectedMetric(t, reader, "db_pool_connections"))
	})

	t.Run("collection without a db handle is a no-op", func(t *testing.T) {
		_, provider := newManualMeter(t)
		metrics, err := NewDBMetrics(provider.Meter("dbm_nodb"), DefaultDBMetricsConfig(), zap.NewNop())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		metrics.StartPoolStatsCollection(ctx)
		metrics.Stop()
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		_, provider := newManualMeter(t)

		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		metrics, err := NewDBMetrics(provider.Meter("dbm_cancel"), DBMetricsConfig{
			Enabled:           true,
			PoolStatsInterval: time.Second,
		}, zap.NewNop())
		require.NoError(t, err)
		metrics.SetSQLDB(mockDB)

		ctx, cancel := context.WithCancel(context.Background())
		metrics.StartPoolStatsCollection(ctx)
		cancel()
		metrics.Stop()
	})
}

func TestDBMetrics_StopIdempotent(t *testing.T) {
	_, provider := newManualMeter(t)

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	metrics, err := NewDBMetrics(provider.Meter("dbm_stop"), DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: 100 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	metrics.SetSQLDB(mockDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	metrics.StartPoolStatsCollection(ctx)

	done := make(chan struct{})
	go func() {
		metrics.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked")
	}

	assert.NotPanics(t, func() { metrics.Stop() })
}

func TestDBMetricsPlugin(t *testing.T) {
	_, provider := newManualMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("dbm_plugin"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	plugin := NewDBMetricsPlugin(metrics, zap.NewNop())
	assert.Equal(t, "db_metrics", plugin.Name())

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, plugin.Initialize(gormDB))
}

func TestDetectOperationType(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT * FROM vehicles WHERE status = 'ACTIVE'", "SELECT"},
		{"  select id from customers", "SELECT"},
		{"INSERT INTO leads (name) VALUES ('Max')", "INSERT"},
		{"UPDATE contracts SET status = 'COMPLETED'", "UPDATE"},
		{"delete from invoices where id = 1", "DELETE"},
		{"CREATE TABLE sequences", "OTHER"},
		{"", "OTHER"},
	}

	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectOperationType(tc.sql))
		})
	}
}

func TestRegisterDBMetrics(t *testing.T) {
	logger := zap.NewNop()

	openMockGorm := func(t *testing.T) *gorm.DB {
		t.Helper()
		mockDB, _, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = mockDB.Close() })
		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
		require.NoError(t, err)
		return gormDB
	}

	t.Run("disabled config registers nothing", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(openMockGorm(t), nil, DBMetricsConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("missing meter provider registers nothing", func(t *testing.T) {
		metrics, err := RegisterDBMetrics(openMockGorm(t), nil, DBMetricsConfig{Enabled: true}, logger)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("registers plugin and pool stats when enabled", func(t *testing.T) {
		_, sdkProvider := newManualMeter(t)
		mp := &MeterProvider{
			provider: sdkProvider,
			logger:   logger,
			config:   MetricsConfig{Enabled: true},
		}

		metrics, err := RegisterDBMetrics(openMockGorm(t), mp, DefaultDBMetricsConfig(), logger)
		require.NoError(t, err)
		require.NotNil(t, metrics)
	})
}

func TestDBMetrics_ConcurrentRecordQuery(t *testing.T) {
	ctx := context.Background()
	reader, provider := newManualMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("dbm_concurrent"), DefaultDBMetricsConfig(), zap.NewNop())
	require.NoError(t, err)

	operations := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	tables := []string{"vehicles", "customers", "contracts", "invoices"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			metrics.RecordQuery(ctx, operations[i%4], tables[i%4], time.Duration(i)*time.Millisecond, nil)
		}(i)
	}
	wg.Wait()

	assert.True(t, collectedMetric(t, reader, "db_query_total"))
}
