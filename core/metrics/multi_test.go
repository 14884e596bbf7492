package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordSolve(SolveRecord) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordUtilization([]ResourceLoad) error {
	r.count++
	return nil
}

type solveOnly struct{ count int }

func (s *solveOnly) RecordSolve(SolveRecord) error {
	s.count++
	return nil
}

// TestMultiSink ensures records are forwarded to all sinks.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{err: errors.New("down")}
	s3 := &solveOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordSolve(SolveRecord{Status: "OPTIMAL"}); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if err := m.RecordUtilization(nil); err != nil {
		t.Fatalf("record utilization: %v", err)
	}
	if s1.count != 2 || s2.count != 2 || s3.count != 1 {
		t.Fatalf("records not forwarded: %d %d %d", s1.count, s2.count, s3.count)
	}
}
