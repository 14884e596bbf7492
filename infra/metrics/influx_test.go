package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/a100/core/factory"
	coremetrics "github.com/kilianp07/a100/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *bodyRecorder) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	err := sink.RecordSolve(coremetrics.SolveRecord{
		RunID:     "run-1",
		Backend:   "search",
		Status:    "OPTIMAL",
		Objective: 212,
		WallTime:  3 * time.Millisecond,
		Branches:  40,
		Zones:     6,
		Scheduled: 6,
		Time:      now,
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("schedule_solve").
		AddTag("backend", "search").
		AddTag("status", "OPTIMAL").
		AddField("run_id", "run-1").
		AddField("objective", int64(212)).
		AddField("wall_time_ms", 3.0).
		AddField("branches", int64(40)).
		AddField("zones", 6).
		AddField("scheduled", 6).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	bodies := rec.all()
	if len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordUtilization(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	loads := []coremetrics.ResourceLoad{
		{RunID: "r", Resource: "cleaners", Peak: 10, Mean: 6.25, Ratio: 0.625, Time: now},
		{RunID: "r", Resource: "tractors", Peak: 1, Mean: 0.5, Ratio: 0.5, Time: now},
	}
	if err := sink.RecordUtilization(loads); err != nil {
		t.Fatalf("record: %v", err)
	}
	var lines []string
	for _, l := range loads {
		p := write.NewPointWithMeasurement("resource_utilization").
			AddTag("resource", l.Resource).
			AddField("run_id", l.RunID).
			AddField("peak", l.Peak).
			AddField("mean", l.Mean).
			AddField("ratio", l.Ratio).
			SetTime(now)
		lines = append(lines, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)))
	}
	bodies := rec.all()
	if len(bodies) != 1 || bodies[0] != strings.Join(lines, "\n") {
		t.Errorf("bodies: %#v", bodies)
	}

	if err := sink.RecordUtilization(nil); err != nil {
		t.Fatalf("empty record: %v", err)
	}
	if len(rec.all()) != 1 {
		t.Fatalf("empty loads must not write")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestInfluxFactory_RequiresURL(t *testing.T) {
	_, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"org": "o"}}})
	if !errors.Is(err, ErrInfluxURL) {
		t.Fatalf("expected ErrInfluxURL, got %v", err)
	}
}
