package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/a100/config"
	"github.com/kilianp07/a100/core/factory"
	coremetrics "github.com/kilianp07/a100/core/metrics"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/solvelog"
	"github.com/kilianp07/a100/infra/logger"
	"github.com/kilianp07/a100/infra/mqtt"
)

type memSink struct {
	mu   sync.Mutex
	recs []coremetrics.SolveRecord
}

func (m *memSink) RecordSolve(r coremetrics.SolveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Path = filepath.Join(t.TempDir(), "solves.log")
	cfg.Scheduler.NumWorkers = 2
	return cfg
}

func smallProblem() model.Problem {
	return model.Problem{
		Resources: []model.Resource{{Name: "cleaners", Capacity: 2}},
		Horizon:   model.Horizon{Slots: 3, SlotMinutes: 30, Start: "11:00"},
		Zones: []model.Zone{
			{Priority: 2, Modes: []model.Mode{{Duration: 2, Demands: []int{2}}}},
			{Priority: 1, Modes: []model.Mode{{Duration: 1, Demands: []int{1}}}},
		},
	}
}

func TestService_SolveReportsEverywhere(t *testing.T) {
	sink := &memSink{}
	pub := mqtt.NewMockPublisher()
	svc, err := New(testConfig(t), WithSink(sink), WithPublisher(pub), WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	svc.Start(context.Background())

	res, err := svc.Scheduler.MakeSchedule(context.Background(), smallProblem())
	require.NoError(t, err)
	// either zone can take the last slot
	assert.Equal(t, int64(2*3+1*1), res.Objective)
	require.NoError(t, svc.Close())

	sink.mu.Lock()
	require.Len(t, sink.recs, 1)
	assert.Equal(t, res.RunID, sink.recs[0].RunID)
	assert.Equal(t, 2, sink.recs[0].Scheduled)
	sink.mu.Unlock()

	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, res.RunID, sent[0].RunID)
	require.Len(t, sent[0].Items, 2)
	assert.Equal(t, "Zone 1", sent[0].Items[0].Name)

	store, err := solvelog.Open(svc.cfg.Logging)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	recs, err := store.Query(context.Background(), solvelog.LogQuery{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "OPTIMAL", recs[0].Status)
}

func TestService_Handler(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Token = "tok"
	cfg.Metrics.Sinks = nil
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	body := `{"resources":[{"capacity":1}],"horizon":{"slots":2},"zones":[{"priority":1,"modes":[{"duration":1,"demands":[1]}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestService_PrometheusInline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "prometheus"}}
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestService_Run(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = "127.0.0.1:0"
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	require.NoError(t, svc.Close())
}

func TestNew_InvalidBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Backend.Type = "missing"
	_, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.Error(t, err)
}
