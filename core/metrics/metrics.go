package metrics

import "time"

// SolveRecord is one solve outcome to be recorded.
type SolveRecord struct {
	RunID     string
	Backend   string
	Status    string
	Objective int64
	WallTime  time.Duration
	Branches  int64
	Zones     int
	Scheduled int
	Time      time.Time
}

// MetricsSink records solve outcomes.
type MetricsSink interface {
	RecordSolve(rec SolveRecord) error
}

// ResourceLoad is the utilization of one resource by an optimal schedule.
type ResourceLoad struct {
	RunID    string
	Resource string
	Peak     float64
	Mean     float64
	Ratio    float64
	Time     time.Time
}

// UtilizationRecorder is implemented by sinks able to record resource
// utilization.
type UtilizationRecorder interface {
	RecordUtilization(loads []ResourceLoad) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }

func (NopSink) RecordUtilization([]ResourceLoad) error { return nil }
