package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/a100/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSolve(coremetrics.SolveRecord{
		Backend: "search", Status: "OPTIMAL", Objective: 212, Scheduled: 6,
		Branches: 40, WallTime: 3 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordSolve(coremetrics.SolveRecord{
		Backend: "search", Status: "INFEASIBLE", Branches: 2,
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("search", "OPTIMAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("search", "INFEASIBLE")))
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.branches.WithLabelValues("search")))
	// gauges keep the last optimal outcome
	assert.Equal(t, 212.0, testutil.ToFloat64(sink.objective))
	assert.Equal(t, 6.0, testutil.ToFloat64(sink.scheduled))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_RecordUtilization(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordUtilization([]coremetrics.ResourceLoad{
		{Resource: "cleaners", Peak: 10, Ratio: 0.5},
		{Resource: "tractors", Peak: 1, Ratio: 0.25},
	}))
	assert.Equal(t, 0.5, testutil.ToFloat64(sink.utilization.WithLabelValues("cleaners")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.peak.WithLabelValues("tractors")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordSolve(coremetrics.SolveRecord{Backend: "search", Status: "OPTIMAL"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.solves.WithLabelValues("search", "OPTIMAL")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSolve(coremetrics.SolveRecord{Backend: "search", Status: "OPTIMAL"}))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `schedule_solves_total{backend="search",status="OPTIMAL"} 1`)
}
