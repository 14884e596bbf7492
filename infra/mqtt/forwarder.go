package mqtt

import (
	"context"

	"github.com/kilianp07/a100/core/events"
	"github.com/kilianp07/a100/core/logger"
	coremqtt "github.com/kilianp07/a100/core/mqtt"
	"github.com/kilianp07/a100/internal/eventbus"
)

// StartScheduleForwarder publishes every optimal schedule seen on the bus.
// Other outcomes are skipped. The returned channel is closed once the
// forwarder has stopped.
func StartScheduleForwarder(ctx context.Context, bus eventbus.EventBus[events.SolveEvent], pub coremqtt.Publisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if ev.Err != nil || ev.Status != "OPTIMAL" {
					continue
				}
				msg := coremqtt.NewScheduleMessage(ev.RunID, ev.Backend, ev.Objective, ev.Entries)
				if err := pub.PublishSchedule(ctx, msg); err != nil {
					log.Errorf("forward schedule %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}
