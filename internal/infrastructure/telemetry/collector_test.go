package telemetry_test

import (
	"net"
	"testing"
	"time"
)

// otlpTestEndpoint is where `make otel-up` exposes the collector locally.
const otlpTestEndpoint = "localhost:14317"

// requireCollector skips the test unless an OTLP collector is listening on
// the endpoint. Exporter integration tests need one; everything else runs
// against disabled providers.
func requireCollector(t *testing.T, endpoint string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping collector integration test in short mode")
	}
	conn, err := net.DialTimeout("tcp", endpoint, 200*time.Millisecond)
	if err != nil {
		t.Skipf("no OTLP collector reachable at %s: %v", endpoint, err)
	}
	_ = conn.Close()
}
