package events

import (
	"time"

	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/report"
)

// SolveEvent is published after every solve, successful or not. Items,
// Entries and Utilization are only set when Status is OPTIMAL.
type SolveEvent struct {
	RunID       string
	Backend     string
	Status      string
	Objective   int64
	WallTime    time.Duration
	Branches    int64
	Zones       int
	Items       []model.Item
	Entries     []report.Entry
	Utilization []report.Utilization
	Err         error
}

// Scheduled returns the number of zones that received a start slot.
func (e SolveEvent) Scheduled() int { return len(e.Items) }
