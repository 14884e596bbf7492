package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/a100/core/metrics"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	branches    *prometheus.CounterVec
	objective   prometheus.Gauge
	scheduled   prometheus.Gauge
	utilization *prometheus.GaugeVec
	peak        *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.solves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_solves_total",
		Help: "Total number of schedule solves by outcome",
	}, []string{"backend", "status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_solve_duration_seconds",
		Help:    "Wall time spent in the optimization backend",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"backend"})); err != nil {
		return nil, err
	}
	if s.branches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_search_branches_total",
		Help: "Search tree nodes explored by the backend",
	}, []string{"backend"})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_objective_value",
		Help: "Objective value of the last optimal schedule",
	})); err != nil {
		return nil, err
	}
	if s.scheduled, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_scheduled_zones",
		Help: "Number of zones in the last optimal schedule",
	})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_resource_utilization_ratio",
		Help: "Share of the horizon capacity used by the last optimal schedule",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	if s.peak, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_resource_peak_load",
		Help: "Highest per-slot demand of the last optimal schedule",
	}, []string{"resource"})); err != nil {
		return nil, err
	}
	return s, nil
}

// Solves returns the solve counter, labelled by backend and status.
func (s *PromSink) Solves() *prometheus.CounterVec { return s.solves }

// RecordSolve counts the solve and, for optimal ones, updates the gauges.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	s.solves.WithLabelValues(rec.Backend, rec.Status).Inc()
	s.duration.WithLabelValues(rec.Backend).Observe(rec.WallTime.Seconds())
	s.branches.WithLabelValues(rec.Backend).Add(float64(rec.Branches))
	if rec.Status == "OPTIMAL" {
		s.objective.Set(float64(rec.Objective))
		s.scheduled.Set(float64(rec.Scheduled))
	}
	return nil
}

// RecordUtilization sets the per-resource gauges.
func (s *PromSink) RecordUtilization(loads []coremetrics.ResourceLoad) error {
	for _, l := range loads {
		s.utilization.WithLabelValues(l.Resource).Set(l.Ratio)
		s.peak.WithLabelValues(l.Resource).Set(l.Peak)
	}
	return nil
}
