package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/scheduler"
	"github.com/kilianp07/a100/core/solvelog"
	"github.com/kilianp07/a100/core/solver"
)

const problemJSON = `{
  "resources": [{"name": "cleaners", "capacity": 10}],
  "horizon": {"slots": 4},
  "zones": [
    {"name": "north", "priority": 2, "modes": [{"duration": 2, "demands": [5]}]},
    {"name": "south", "priority": 1, "modes": [{"duration": 4, "demands": [3]}]}
  ]
}`

func newScheduler(t *testing.T, store solvelog.LogStore) *scheduler.Scheduler {
	t.Helper()
	cfg := scheduler.Config{}
	cfg.SetDefaults()
	s, err := scheduler.New(solver.NewSearchBackend(solver.SearchConfig{Workers: 1}, nil), cfg, scheduler.WithStore(store))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) solvelog.LogStore {
	t.Helper()
	st, err := solvelog.NewJSONLStore(filepath.Join(t.TempDir(), "solves.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSolveEndpoint(t *testing.T) {
	store := newStore(t)
	srv := httptest.NewServer(NewRouter(newScheduler(t, store), store, "", nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/schedule", "application/json", strings.NewReader(problemJSON))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "OPTIMAL", out.Status)
	assert.NotEmpty(t, out.RunID)
	// north ends at 4 and south can only start at 0
	assert.Equal(t, int64(2*4+1*4), out.Objective)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "north", out.Items[0].Name)
	assert.Equal(t, "12:00", out.Items[0].StartLabel)
	assert.Equal(t, "13:00", out.Items[0].EndLabel)
	assert.Equal(t, 0, out.Workload.First)
	assert.Equal(t, [][]int{{3}, {3}, {8}, {8}}, out.Workload.Usage)
	require.Len(t, out.Utilization, 1)
	assert.Equal(t, 8.0, out.Utilization[0].Peak)

	// the solve is in the log
	resp2, err := http.Get(srv.URL + "/api/v1/schedule/logs?status=OPTIMAL")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var recs []solvelog.LogRecord
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&recs))
	require.Len(t, recs, 1)
	assert.Equal(t, out.RunID, recs[0].RunID)
}

func TestSolveEndpoint_YAML(t *testing.T) {
	h := NewRouter(newScheduler(t, nil), nil, "", nil)
	body := "resources: [{capacity: 1}]\nhorizon: {slots: 2}\nzones: [{priority: 1, modes: [{duration: 1, demands: [1]}]}]\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/yaml")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, int64(2), out.Objective)
}

func TestSolveEndpoint_Errors(t *testing.T) {
	h := NewRouter(newScheduler(t, nil), nil, "", nil)
	cases := []struct {
		name  string
		body  string
		code  int
		field string
	}{
		{"malformed", `{"zones":`, http.StatusBadRequest, ""},
		{"unknown field", `{"horizon": {"slots": 1}, "extra": 1}`, http.StatusBadRequest, ""},
		{"invalid", `{"resources": [{"capacity": -1}], "horizon": {"slots": 2}}`, http.StatusBadRequest, "resources[0].capacity"},
		{"horizon too long", `{"horizon": {"slots": 4294967296}, "zones": [{"priority": 1, "modes": [{"duration": 1, "demands": []}]}]}`, http.StatusBadRequest, "horizon.slots"},
		{"infeasible", `{"resources": [{"capacity": 1}], "horizon": {"slots": 2}, "zones": [{"priority": 1, "modes": [{"duration": 1, "demands": [2]}]}]}`, http.StatusUnprocessableEntity, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			require.Equal(t, tc.code, rr.Code, rr.Body.String())
			var out ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			assert.NotEmpty(t, out.Error)
			assert.Equal(t, tc.field, out.Field)
		})
	}
}

type fakeSolver struct{ err error }

func (f fakeSolver) MakeSchedule(context.Context, model.Problem) (scheduler.Result, error) {
	return scheduler.Result{RunID: "r1"}, f.err
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   int
		status string
	}{
		{&scheduler.NoScheduleError{Status: cpmodel.Unknown}, http.StatusServiceUnavailable, "UNKNOWN"},
		{&scheduler.NoScheduleError{Status: cpmodel.Feasible, HasIncumbent: true}, http.StatusServiceUnavailable, "FEASIBLE"},
		{&scheduler.NoScheduleError{Status: cpmodel.Infeasible}, http.StatusUnprocessableEntity, "INFEASIBLE"},
		{fmt.Errorf("solve: %w", cpmodel.ErrInvalidModel), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		h := NewRouter(fakeSolver{err: tc.err}, nil, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", strings.NewReader(`{"horizon":{"slots":1}}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, tc.code, rr.Code, tc.err.Error())
		var out ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "r1", out.RunID)
		assert.Equal(t, tc.status, out.Status)
	}
}

func TestBearerAuth(t *testing.T) {
	store := newStore(t)
	h := NewRouter(fakeSolver{}, store, "tok", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	for _, header := range []string{"Bearer tox", "Bearer tok2", "tok"} {
		req = httptest.NewRequest(http.MethodGet, "/api/v1/schedule/logs", nil)
		req.Header.Set("Authorization", header)
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/schedule/logs", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	// health stays public
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogsFilters(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, solvelog.LogRecord{RunID: "a", Status: "OPTIMAL", Timestamp: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Append(ctx, solvelog.LogRecord{RunID: "b", Status: "INFEASIBLE", Timestamp: now}))
	h := NewRouter(fakeSolver{}, store, "", nil)

	get := func(query string) (int, []solvelog.LogRecord) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/logs"+query, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		var recs []solvelog.LogRecord
		if rr.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
		}
		return rr.Code, recs
	}

	code, recs := get("?start=" + now.Add(-time.Hour).Format(time.RFC3339))
	require.Equal(t, http.StatusOK, code)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].RunID)

	_, recs = get("?status=OPTIMAL")
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].RunID)

	code, _ = get("?end=yesterday")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLogsRouteNeedsStore(t *testing.T) {
	h := NewRouter(fakeSolver{}, nil, "", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServe(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:0"}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg, http.NotFoundHandler()) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
