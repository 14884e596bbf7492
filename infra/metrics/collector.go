package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/a100/core/events"
	"github.com/kilianp07/a100/core/logger"
	coremetrics "github.com/kilianp07/a100/core/metrics"
	"github.com/kilianp07/a100/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// solve events. It stops when the context is canceled or the bus closes.
// The returned channel is closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus[events.SolveEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(ev, sink, log)
			}
		}
	}()
	return done
}

func record(ev events.SolveEvent, sink coremetrics.MetricsSink, log logger.Logger) {
	now := time.Now()
	if err := sink.RecordSolve(coremetrics.SolveRecord{
		RunID:     ev.RunID,
		Backend:   ev.Backend,
		Status:    ev.Status,
		Objective: ev.Objective,
		WallTime:  ev.WallTime,
		Branches:  ev.Branches,
		Zones:     ev.Zones,
		Scheduled: ev.Scheduled(),
		Time:      now,
	}); err != nil {
		log.Warnf("record solve %s: %v", ev.RunID, err)
	}
	r, ok := sink.(coremetrics.UtilizationRecorder)
	if !ok || len(ev.Utilization) == 0 {
		return
	}
	loads := make([]coremetrics.ResourceLoad, len(ev.Utilization))
	for i, u := range ev.Utilization {
		loads[i] = coremetrics.ResourceLoad{
			RunID:    ev.RunID,
			Resource: u.Resource,
			Peak:     u.Peak,
			Mean:     u.Mean,
			Ratio:    u.Ratio,
			Time:     now,
		}
	}
	if err := r.RecordUtilization(loads); err != nil {
		log.Warnf("record utilization %s: %v", ev.RunID, err)
	}
}
