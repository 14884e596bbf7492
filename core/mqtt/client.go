package mqtt

import (
	"context"
	"time"

	"github.com/kilianp07/a100/core/report"
)

// ScheduleMessage is the payload published for an optimal schedule.
type ScheduleMessage struct {
	RunID     string         `json:"run_id"`
	Backend   string         `json:"backend"`
	Objective int64          `json:"objective"`
	Items     []report.Entry `json:"items"`
	Timestamp int64          `json:"timestamp"`
}

// NewScheduleMessage stamps a message with the current time.
func NewScheduleMessage(runID, backend string, objective int64, items []report.Entry) ScheduleMessage {
	if items == nil {
		items = []report.Entry{}
	}
	return ScheduleMessage{
		RunID:     runID,
		Backend:   backend,
		Objective: objective,
		Items:     items,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Publisher sends schedules to downstream consumers.
type Publisher interface {
	// PublishSchedule delivers msg or returns the last delivery error once
	// the retries are exhausted or ctx is done.
	PublishSchedule(ctx context.Context, msg ScheduleMessage) error
}
