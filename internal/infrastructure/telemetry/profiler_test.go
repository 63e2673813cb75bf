package telemetry_test

import (
	"sync"
	"testing"

	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	cfg := telemetry.ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://localhost:4040",
		ApplicationName: "dms-backend",
	}

	profiler, err := telemetry.NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, profiler)

	assert.False(t, profiler.IsEnabled())
	assert.Equal(t, "dms-backend", profiler.GetConfig().ApplicationName)

	// Stop is a no-op when nothing was started.
	assert.NoError(t, profiler.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.ProfilerConfig
		wantErr string
	}{
		{
			name: "missing server address",
			cfg: telemetry.ProfilerConfig{
				Enabled:         true,
				ApplicationName: "dms-backend",
			},
			wantErr: "server address is required",
		},
		{
			name: "missing application name",
			cfg: telemetry.ProfilerConfig{
				Enabled:       true,
				ServerAddress: "http://localhost:4040",
			},
			wantErr: "application name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiler, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, profiler)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProfiler_EnabledIntegration(t *testing.T) {
	// Needs a Pyroscope server; probe before starting the session.
	requireCollector(t, "localhost:4040")

	cfg := telemetry.ProfilerConfig{
		Enabled:             true,
		ServerAddress:       "http://localhost:4040",
		ApplicationName:     "dms-backend",
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}

	profiler, err := telemetry.NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, profiler)

	assert.True(t, profiler.IsEnabled())
	assert.NoError(t, profiler.Stop())
}

func TestProfiler_StopIdempotent(t *testing.T) {
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	for range 3 {
		assert.NoError(t, profiler.Stop())
	}
}

func TestProfiler_StopConcurrent(t *testing.T) {
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = profiler.Stop()
		}()
	}
	wg.Wait()
}

func TestProfiler_GetConfigEchoesSettings(t *testing.T) {
	// All cases stay disabled; enabling would dial a live Pyroscope server.
	tests := []struct {
		name string
		cfg  telemetry.ProfilerConfig
	}{
		{
			name: "cpu and heap profiles",
			cfg: telemetry.ProfilerConfig{
				ServerAddress:       "http://localhost:4040",
				ApplicationName:     "dms-backend",
				ProfileCPU:          true,
				ProfileAllocObjects: true,
				ProfileAllocSpace:   true,
			},
		},
		{
			name: "mutex profiling with fraction",
			cfg: telemetry.ProfilerConfig{
				ServerAddress:        "http://localhost:4040",
				ApplicationName:      "dms-backend",
				ProfileMutexCount:    true,
				ProfileMutexDuration: true,
				MutexProfileFraction: 10,
			},
		},
		{
			name: "block profiling with rate",
			cfg: telemetry.ProfilerConfig{
				ServerAddress:        "http://localhost:4040",
				ApplicationName:      "dms-backend",
				ProfileBlockCount:    true,
				ProfileBlockDuration: true,
				BlockProfileRate:     10,
			},
		},
		{
			name: "gc runs disabled",
			cfg: telemetry.ProfilerConfig{
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "dms-backend",
				DisableGCRuns:   true,
			},
		},
		{
			name: "grafana cloud basic auth",
			cfg: telemetry.ProfilerConfig{
				ServerAddress:     "http://localhost:4040",
				ApplicationName:   "dms-backend",
				BasicAuthUser:     "dealer-ops",
				BasicAuthPassword: "s3cret",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiler, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.NoError(t, err)
			require.NotNil(t, profiler)

			assert.False(t, profiler.IsEnabled())
			assert.Equal(t, tt.cfg, profiler.GetConfig())

			assert.NoError(t, profiler.Stop())
		})
	}
}
