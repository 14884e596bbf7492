package scenarios

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/a100/core/events"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/report"
	"github.com/kilianp07/a100/core/scheduler"
	"github.com/kilianp07/a100/core/solvelog"
	"github.com/kilianp07/a100/core/solver"
	"github.com/kilianp07/a100/infra/logger"
	"github.com/kilianp07/a100/infra/metrics"
	"github.com/kilianp07/a100/infra/mqtt"
	"github.com/kilianp07/a100/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	store, err := solvelog.NewJSONLStore(filepath.Join(t.TempDir(), "solves.log"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	pub := mqtt.NewMockPublisher()

	bus := eventbus.New[events.SolveEvent](0)
	ctx := context.Background()
	collected := metrics.StartEventCollector(ctx, bus, sink, logger.NopLogger{})
	forwarded := mqtt.StartScheduleForwarder(ctx, bus, pub, logger.NopLogger{})

	cfg := scheduler.Config{TimeLimitSeconds: 30}
	cfg.SetDefaults()
	sched, err := scheduler.New(solver.NewSearchBackend(solver.SearchConfig{Workers: 2}, nil), cfg,
		scheduler.WithBus(bus), scheduler.WithStore(store))
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	res, solveErr := sched.MakeSchedule(ctx, sc.Problem)
	bus.Close()
	waitFor(t, collected)
	waitFor(t, forwarded)

	status := checkOutcome(t, sc, res, solveErr)

	if got := testutil.ToFloat64(sink.Solves().WithLabelValues("search", status)); got != 1 {
		t.Errorf("scenario %s: expected one %s solve in metrics, got %v", sc.Name, status, got)
	}
	recs, err := store.Query(ctx, solvelog.LogQuery{RunID: res.RunID})
	if err != nil || len(recs) != 1 || recs[0].Status != status {
		t.Errorf("scenario %s: solve log %+v (%v)", sc.Name, recs, err)
	}
	wantSent := 0
	if sc.Expected.Outcome == OutcomeOptimal {
		wantSent = 1
	}
	if sent := pub.Sent(); len(sent) != wantSent {
		t.Errorf("scenario %s: expected %d published schedules, got %d", sc.Name, wantSent, len(sent))
	}
}

// checkOutcome compares the solve with the expectations and returns the
// status it was reported under.
func checkOutcome(t *testing.T, sc *Scenario, res scheduler.Result, err error) string {
	t.Helper()
	exp := sc.Expected
	switch exp.Outcome {
	case OutcomeInvalid:
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("scenario %s: expected validation error, got %v", sc.Name, err)
		}
		return scheduler.StatusInvalid
	case OutcomeInfeasible:
		if !errors.Is(err, scheduler.ErrInfeasible) {
			t.Fatalf("scenario %s: expected infeasible, got %v", sc.Name, err)
		}
		return "INFEASIBLE"
	}

	if err != nil {
		t.Fatalf("scenario %s: solve: %v", sc.Name, err)
	}
	if verr := report.Verify(sc.Problem, res.Items); verr != nil {
		t.Errorf("scenario %s: %v", sc.Name, verr)
	}
	if obj := report.Objective(sc.Problem, res.Items); obj != res.Objective {
		t.Errorf("scenario %s: objective %d does not match items (%d)", sc.Name, res.Objective, obj)
	}
	if exp.Objective != nil && res.Objective != *exp.Objective {
		t.Errorf("scenario %s: expected objective %d, got %d", sc.Name, *exp.Objective, res.Objective)
	}
	if exp.Scheduled != nil && len(res.Items) != *exp.Scheduled {
		t.Errorf("scenario %s: expected %d items, got %d", sc.Name, *exp.Scheduled, len(res.Items))
	}
	if exp.Items != nil && !equalItems(exp.Items, res.Items) {
		t.Errorf("scenario %s: expected items %v, got %v", sc.Name, exp.Items, res.Items)
	}
	for _, pair := range exp.Disjoint {
		if overlap(sc.Problem, res.Items, pair[0], pair[1]) {
			t.Errorf("scenario %s: zones %d and %d overlap", sc.Name, pair[0], pair[1])
		}
	}
	return "OPTIMAL"
}

func equalItems(a, b []model.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func overlap(p model.Problem, items []model.Item, z1, z2 int) bool {
	var a, b *model.Item
	for i := range items {
		switch items[i].Zone {
		case z1:
			a = &items[i]
		case z2:
			b = &items[i]
		}
	}
	if a == nil || b == nil {
		return false
	}
	return a.Start < b.End(p.Zones) && b.Start < a.End(p.Zones)
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("consumer did not stop")
	}
}
