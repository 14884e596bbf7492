package metrics

import "errors"

// MultiSink fans out records to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to every sink. A failing sink does not
// stop the others; the errors are joined.
func (m *MultiSink) RecordSolve(rec SolveRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordSolve(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordUtilization forwards loads to the sinks that support them.
func (m *MultiSink) RecordUtilization(loads []ResourceLoad) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(UtilizationRecorder); ok {
			if err := rec.RecordUtilization(loads); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
