package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/events"
	"github.com/kilianp07/a100/core/logger"
	"github.com/kilianp07/a100/core/model"
	"github.com/kilianp07/a100/core/report"
	"github.com/kilianp07/a100/core/solvelog"
	"github.com/kilianp07/a100/core/solver"
	"github.com/kilianp07/a100/internal/eventbus"
)

var (
	// ErrInfeasible means the backend proved that no schedule satisfies the
	// constraints.
	ErrInfeasible = errors.New("no feasible schedule")
	// ErrInconclusive means the search budget ran out before optimality was
	// proven.
	ErrInconclusive = errors.New("search ended without an optimal schedule")
)

// NoScheduleError is returned when a solve ends without an optimal
// schedule. It unwraps to ErrInfeasible or ErrInconclusive.
type NoScheduleError struct {
	Status cpmodel.Status
	// Objective is the best objective found, meaningful only when
	// HasIncumbent is set.
	Objective    int64
	HasIncumbent bool
}

func (e *NoScheduleError) Error() string {
	if e.HasIncumbent {
		return fmt.Sprintf("%v: status %s, best objective %d", e.Unwrap(), e.Status, e.Objective)
	}
	return fmt.Sprintf("%v: status %s", e.Unwrap(), e.Status)
}

func (e *NoScheduleError) Unwrap() error {
	if e.Status == cpmodel.Infeasible {
		return ErrInfeasible
	}
	return ErrInconclusive
}

// Statuses reported for solves that never reached a backend answer.
const (
	StatusInvalid = "INVALID"
	StatusError   = "ERROR"
)

// Result is the outcome of a successful solve.
type Result struct {
	RunID     string         `json:"run_id"`
	Status    cpmodel.Status `json:"status"`
	Items     []model.Item   `json:"items"`
	Objective int64          `json:"objective"`
	WallTime  time.Duration  `json:"wall_time"`
	Branches  int64          `json:"branches"`
	Backend   string         `json:"backend"`
}

// Scheduler builds, solves and decodes scheduling problems.
type Scheduler struct {
	backend solver.Backend
	cfg     Config
	log     logger.Logger
	bus     eventbus.Publisher[events.SolveEvent]
	store   solvelog.LogStore
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithBus publishes a SolveEvent after every solve.
func WithBus(b eventbus.Publisher[events.SolveEvent]) Option {
	return func(s *Scheduler) { s.bus = b }
}

// WithStore appends a solve log record after every solve.
func WithStore(st solvelog.LogStore) Option {
	return func(s *Scheduler) { s.store = st }
}

// New returns a Scheduler solving with backend.
func New(backend solver.Backend, cfg Config, opts ...Option) (*Scheduler, error) {
	if backend == nil {
		return nil, fmt.Errorf("scheduler: nil backend")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	s := &Scheduler{backend: backend, cfg: cfg, log: logger.NopLogger{}}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewFromConfig instantiates the backend module named in cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Scheduler, error) {
	b, err := solver.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("scheduler: backend: %w", err)
	}
	return New(b, cfg, opts...)
}

// Backend returns the backend name.
func (s *Scheduler) Backend() string { return s.backend.Name() }

// MakeSchedule solves p. It returns the optimal schedule, or an error that is
// a *model.ValidationError, a *NoScheduleError or a backend failure. The
// returned Result always carries the run id.
func (s *Scheduler) MakeSchedule(ctx context.Context, p model.Problem) (Result, error) {
	res := Result{RunID: uuid.NewString(), Backend: s.backend.Name()}
	started := time.Now()

	c, err := s.build(p)
	if err != nil {
		s.report(ctx, p, res, StatusInvalid, err)
		return res, err
	}
	for _, z := range c.Stranded {
		s.log.Warnf("zone %s has no mode that fits the horizon and capacities", p.ZoneName(z))
	}

	resp, err := s.backend.Solve(ctx, c.Model, s.cfg.Parameters())
	if err != nil {
		err = fmt.Errorf("solve with %s: %w", s.backend.Name(), err)
		res.WallTime = time.Since(started)
		s.report(ctx, p, res, StatusError, err)
		return res, err
	}
	res.Status = resp.Status
	res.WallTime = resp.WallTime
	res.Branches = resp.Branches
	s.log.Infof("status: %s (%.3fs)", resp.Status, resp.WallTime.Seconds())

	switch resp.Status {
	case cpmodel.Optimal:
		res.Items, err = Extract(c, resp)
		res.Objective = resp.ObjectiveValue
	case cpmodel.Infeasible, cpmodel.Feasible, cpmodel.Unknown:
		err = &NoScheduleError{
			Status:       resp.Status,
			Objective:    resp.ObjectiveValue,
			HasIncumbent: resp.HasSolution(),
		}
	default:
		err = fmt.Errorf("backend %s: status %s: %w", s.backend.Name(), resp.Status, cpmodel.ErrInvalidModel)
	}
	s.report(ctx, p, res, resp.Status.String(), err)
	return res, err
}

// build compiles p once its horizon passes the configured slot limit.
func (s *Scheduler) build(p model.Problem) (*Compiled, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.CheckSlots(s.cfg.MaxSlots); err != nil {
		return nil, err
	}
	return Build(p)
}

// report publishes the outcome on the bus and the solve log. Store failures
// are logged, never returned.
func (s *Scheduler) report(ctx context.Context, p model.Problem, res Result, status string, err error) {
	if s.bus != nil {
		ev := events.SolveEvent{
			RunID:     res.RunID,
			Backend:   res.Backend,
			Status:    status,
			Objective: res.Objective,
			WallTime:  res.WallTime,
			Branches:  res.Branches,
			Zones:     len(p.Zones),
			Items:     res.Items,
			Err:       err,
		}
		if err == nil {
			ev.Entries = report.Entries(p, res.Items)
			ev.Utilization = report.ComputeUtilization(p, res.Items)
		}
		s.bus.Publish(ev)
	}
	if s.store == nil {
		return
	}
	rec := solvelog.LogRecord{
		RunID:     res.RunID,
		Timestamp: time.Now().UTC(),
		Backend:   res.Backend,
		Status:    status,
		Objective: res.Objective,
		WallTime:  res.WallTime.Seconds(),
		Branches:  res.Branches,
		Problem:   solvelog.Summarize(p),
		Items:     res.Items,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if serr := s.store.Append(ctx, rec); serr != nil {
		s.log.Errorf("append solve log %s: %v", res.RunID, serr)
	}
}
