// Package solvelog keeps a history of schedule solves. Each call to
// MakeSchedule appends one LogRecord, whatever its outcome.
package solvelog

import (
	"context"
	"time"

	"github.com/kilianp07/a100/core/model"
)

// LogRecord captures one solve request and its outcome.
type LogRecord struct {
	RunID     string       `json:"run_id"`
	Timestamp time.Time    `json:"timestamp"`
	Backend   string       `json:"backend"`
	Status    string       `json:"status"`
	Objective int64        `json:"objective"`
	WallTime  float64      `json:"wall_time_s"`
	Branches  int64        `json:"branches"`
	Problem   Summary      `json:"problem"`
	Items     []model.Item `json:"items,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Summary describes the size of the solved problem.
type Summary struct {
	Zones     int `json:"zones"`
	Resources int `json:"resources"`
	Slots     int `json:"slots"`
}

// Summarize returns the summary of p.
func Summarize(p model.Problem) Summary {
	return Summary{Zones: len(p.Zones), Resources: len(p.Resources), Slots: p.NumSlots()}
}

// LogQuery defines filters for retrieving records. Zero fields match
// everything.
type LogQuery struct {
	Start  time.Time
	End    time.Time
	Status string
	RunID  string
}

// Match reports whether r satisfies q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
