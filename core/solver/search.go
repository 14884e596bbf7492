package solver

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/logger"
)

// SearchConfig configures the built-in search backend.
type SearchConfig struct {
	// Workers is used when the solve parameters leave NumWorkers at zero.
	Workers int `json:"workers"`
}

// SearchBackend is an exact depth-first branch and bound. It propagates
// linear and cumulative constraints at every node, prunes with the
// objective bound of the current domains and follows the model's decision
// strategies. The first decision is split across worker goroutines that
// share the incumbent.
type SearchBackend struct {
	workers int
	log     logger.Logger
}

// NewSearchBackend returns a search backend. A nil logger discards output.
func NewSearchBackend(cfg SearchConfig, log logger.Logger) *SearchBackend {
	if log == nil {
		log = logger.NopLogger{}
	}
	w := cfg.Workers
	if w <= 0 {
		w = 1
	}
	return &SearchBackend{workers: w, log: log}
}

// Name implements Backend.
func (b *SearchBackend) Name() string { return "search" }

// Solve implements Backend.
func (b *SearchBackend) Solve(ctx context.Context, m *cpmodel.Model, p cpmodel.Parameters) (*cpmodel.Response, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	begin := time.Now()
	resp := &cpmodel.Response{Backend: b.Name()}
	if err := m.Validate(); err != nil {
		b.log.Warnf("rejecting model %q: %v", m.Name, err)
		resp.Status = cpmodel.ModelInvalid
		return resp, nil
	}
	if p.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.MaxTime)
		defer cancel()
	}
	workers := p.NumWorkers
	if workers <= 0 {
		workers = b.workers
	}

	s := newSearch(ctx, m, p.MaxBranches)
	root := newDomains(m)
	if s.prop.propagate(root) {
		resp.BestBound = s.sign * s.bound(root)
		s.run(root, workers)
	}

	resp.Branches = s.branches.Load()
	resp.WallTime = time.Since(begin)
	found, stopped := s.found.Load(), s.stopped.Load()
	switch {
	case found && (!stopped || s.exhausted(root)):
		resp.Status = cpmodel.Optimal
	case found:
		resp.Status = cpmodel.Feasible
	case stopped:
		resp.Status = cpmodel.Unknown
	default:
		resp.Status = cpmodel.Infeasible
	}
	if found {
		resp.Values = s.values
		resp.ObjectiveValue = m.ObjectiveValue(s.values)
		if resp.Status == cpmodel.Optimal {
			resp.BestBound = resp.ObjectiveValue
		}
	}
	b.log.Debugw("search finished", map[string]any{
		"model":    m.Name,
		"status":   resp.Status.String(),
		"branches": resp.Branches,
		"workers":  workers,
		"wall_ms":  resp.WallTime.Milliseconds(),
	})
	return resp, nil
}

type decision struct {
	v         int
	reduction cpmodel.DomainReduction
}

type search struct {
	ctx         context.Context
	m           *cpmodel.Model
	prop        *propagator
	order       []decision
	sign        int64
	maxBranches int64

	branches atomic.Int64
	stopped  atomic.Bool
	found    atomic.Bool
	// best is the incumbent objective in maximization form.
	best atomic.Int64

	mu     sync.Mutex
	values []int64
}

func newSearch(ctx context.Context, m *cpmodel.Model, maxBranches int64) *search {
	s := &search{ctx: ctx, m: m, prop: newPropagator(m), sign: 1, maxBranches: maxBranches}
	if m.Objective != nil && !m.Objective.Maximize {
		s.sign = -1
	}
	s.best.Store(math.MinInt64)
	seen := make([]bool, m.NumVars())
	for _, st := range m.Strategies {
		for _, v := range st.Vars {
			if !seen[v] {
				seen[v] = true
				s.order = append(s.order, decision{v: v, reduction: st.Reduction})
			}
		}
	}
	for v := range seen {
		if !seen[v] {
			s.order = append(s.order, decision{v: v, reduction: cpmodel.SelectMinValue})
		}
	}
	return s
}

// bound is an upper bound of the objective, in maximization form, over
// every assignment left in d.
func (s *search) bound(d *domains) int64 {
	if s.m.Objective == nil {
		return 0
	}
	ub := s.sign * s.m.Objective.Offset
	for _, t := range s.m.Objective.Terms {
		c := s.sign * t.Coeff
		if c > 0 {
			ub += c * d.hi[t.Var]
		} else {
			ub += c * d.lo[t.Var]
		}
	}
	return ub
}

func (s *search) stop() bool {
	if s.stopped.Load() {
		return true
	}
	n := s.branches.Load()
	if s.maxBranches > 0 && n >= s.maxBranches {
		s.stopped.Store(true)
		return true
	}
	select {
	case <-s.ctx.Done():
		s.stopped.Store(true)
		return true
	default:
		return false
	}
}

// exhausted reports whether the incumbent already reaches the bound of d,
// so nothing below d can improve on it.
func (s *search) exhausted(d *domains) bool {
	return s.bound(d) <= s.best.Load()
}

func (s *search) next(d *domains) (decision, bool) {
	for _, dec := range s.order {
		if !d.fixed(dec.v) {
			return dec, true
		}
	}
	return decision{}, false
}

// nth returns the k-th value of [lo, hi] in the order of the reduction.
func (dec decision) nth(lo, hi, k int64) int64 {
	if dec.reduction == cpmodel.SelectMaxValue {
		return hi - k
	}
	return lo + k
}

func (s *search) child(d *domains, v int, val int64) (*domains, bool) {
	c := d.clone()
	c.assign(v, val)
	s.branches.Add(1)
	return c, s.prop.propagate(c)
}

func (s *search) record(vals []int64) {
	if err := s.m.Check(vals); err != nil {
		return
	}
	obj := s.sign * s.m.ObjectiveValue(vals)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.found.Load() && obj <= s.best.Load() {
		return
	}
	s.values = append([]int64(nil), vals...)
	s.best.Store(obj)
	s.found.Store(true)
}

func (s *search) dfs(d *domains) {
	if s.exhausted(d) {
		return
	}
	dec, ok := s.next(d)
	if !ok {
		s.record(d.lo)
		return
	}
	lo, hi := d.lo[dec.v], d.hi[dec.v]
	for k := int64(0); k <= hi-lo; k++ {
		if s.exhausted(d) || s.stop() {
			return
		}
		if c, ok := s.child(d, dec.v, dec.nth(lo, hi, k)); ok {
			s.dfs(c)
		}
	}
}

// run explores the tree under root. The values of the first decision are
// dealt round-robin to the workers.
func (s *search) run(root *domains, workers int) {
	dec, ok := s.next(root)
	if !ok {
		s.record(root.lo)
		return
	}
	lo, hi := root.lo[dec.v], root.hi[dec.v]
	n := hi - lo + 1
	if int64(workers) > n {
		workers = int(n)
	}
	step := int64(workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for k := int64(w); k < n; k += step {
				if s.exhausted(root) || s.stop() {
					return nil
				}
				if c, ok := s.child(root, dec.v, dec.nth(lo, hi, k)); ok {
					s.dfs(c)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
