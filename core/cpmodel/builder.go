package cpmodel

import (
	"errors"
	"fmt"
)

// ErrInvalidModel is wrapped by every error returned from Builder.Model and
// Model.Validate.
var ErrInvalidModel = errors.New("invalid model")

// DomainReduction selects which value a decision strategy tries first.
type DomainReduction int

const (
	// SelectMinValue tries values in increasing order.
	SelectMinValue DomainReduction = iota
	// SelectMaxValue tries values in decreasing order.
	SelectMaxValue
)

// DecisionStrategy lists variables to branch on, in order, before any other.
type DecisionStrategy struct {
	Vars      []int           `json:"vars"`
	Reduction DomainReduction `json:"reduction"`
}

// LinearConstraint bounds a linear expression: Lb <= sum(Terms) <= Ub. The
// constraint only holds when every Enforcement literal is true.
type LinearConstraint struct {
	Terms       []Term    `json:"terms"`
	Lb          int64     `json:"lb"`
	Ub          int64     `json:"ub"`
	Enforcement []Literal `json:"enforcement,omitempty"`
}

// CumulativeConstraint bounds, at every instant, the summed demand of the
// present intervals covering it.
type CumulativeConstraint struct {
	Capacity  int64   `json:"capacity"`
	Intervals []int   `json:"intervals"`
	Demands   []int64 `json:"demands"`
}

// Objective is a linear objective over the model variables.
type Objective struct {
	Terms    []Term `json:"terms"`
	Offset   int64  `json:"offset"`
	Maximize bool   `json:"maximize"`
}

// Builder accumulates variables and constraints.
type Builder struct {
	name        string
	domains     []Domain
	names       []string
	intervals   []Interval
	linears     []LinearConstraint
	cumulatives []CumulativeConstraint
	strategies  []DecisionStrategy
	objective   *Objective
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// SetName names the model.
func (b *Builder) SetName(name string) { b.name = name }

// NewIntVar creates an integer variable with domain [lb, ub].
func (b *Builder) NewIntVar(lb, ub int64) IntVar {
	b.domains = append(b.domains, Domain{Min: lb, Max: ub})
	b.names = append(b.names, "")
	return IntVar{b: b, index: len(b.domains) - 1}
}

// NewBoolVar creates a 0/1 variable.
func (b *Builder) NewBoolVar() BoolVar {
	v := b.NewIntVar(0, 1)
	return BoolVar{b: b, index: v.index}
}

// NewFixedSizeIntervalVar creates an interval that is always present.
func (b *Builder) NewFixedSizeIntervalVar(start IntVar, size int64) IntervalVar {
	b.intervals = append(b.intervals, Interval{Start: start.index, Size: size})
	return IntervalVar{index: len(b.intervals) - 1}
}

// NewOptionalFixedSizeIntervalVar creates an interval of the given size
// starting at start, present iff presence is true.
func (b *Builder) NewOptionalFixedSizeIntervalVar(start IntVar, size int64, presence BoolVar) IntervalVar {
	b.intervals = append(b.intervals, Interval{
		Start:    start.index,
		Size:     size,
		Presence: presence.Literal(),
		Optional: true,
	})
	return IntervalVar{index: len(b.intervals) - 1}
}

// Constraint is a handle on a linear constraint of the builder.
type Constraint struct {
	b     *Builder
	index int
}

// OnlyEnforceIf makes the constraint conditional on all lits being true.
func (c Constraint) OnlyEnforceIf(lits ...BoolVar) Constraint {
	for _, l := range lits {
		c.b.linears[c.index].Enforcement = append(c.b.linears[c.index].Enforcement, l.Literal())
	}
	return c
}

// AddLinearConstraint adds lb <= expr <= ub.
func (b *Builder) AddLinearConstraint(expr LinearArgument, lb, ub int64) Constraint {
	e := NewLinearExpr().Add(expr)
	terms, offset := e.normalize()
	b.linears = append(b.linears, LinearConstraint{Terms: terms, Lb: lb - offset, Ub: ub - offset})
	return Constraint{b: b, index: len(b.linears) - 1}
}

// AddEquality adds lhs == rhs.
func (b *Builder) AddEquality(lhs, rhs LinearArgument) Constraint {
	return b.AddLinearConstraint(NewLinearExpr().Add(lhs).AddTerm(rhs, -1), 0, 0)
}

// AddLessOrEqual adds lhs <= rhs.
func (b *Builder) AddLessOrEqual(lhs, rhs LinearArgument) Constraint {
	return b.AddLinearConstraint(NewLinearExpr().Add(lhs).AddTerm(rhs, -1), -Infinity, 0)
}

// Cumulative is a handle on a cumulative constraint of the builder.
type Cumulative struct {
	b     *Builder
	index int
}

// AddCumulative adds an empty cumulative constraint with the given capacity.
func (b *Builder) AddCumulative(capacity int64) Cumulative {
	b.cumulatives = append(b.cumulatives, CumulativeConstraint{Capacity: capacity})
	return Cumulative{b: b, index: len(b.cumulatives) - 1}
}

// AddDemand registers an interval consuming demand units while present.
func (c Cumulative) AddDemand(iv IntervalVar, demand int64) Cumulative {
	cc := &c.b.cumulatives[c.index]
	cc.Intervals = append(cc.Intervals, iv.index)
	cc.Demands = append(cc.Demands, demand)
	return c
}

// AddDecisionStrategy asks the backend to branch on vars first, in order.
func (b *Builder) AddDecisionStrategy(reduction DomainReduction, vars ...Variable) {
	ds := DecisionStrategy{Reduction: reduction}
	for _, v := range vars {
		ds.Vars = append(ds.Vars, v.Index())
	}
	b.strategies = append(b.strategies, ds)
}

// Maximize sets the objective to maximize expr.
func (b *Builder) Maximize(expr LinearArgument) { b.setObjective(expr, true) }

// Minimize sets the objective to minimize expr.
func (b *Builder) Minimize(expr LinearArgument) { b.setObjective(expr, false) }

func (b *Builder) setObjective(expr LinearArgument, maximize bool) {
	terms, offset := NewLinearExpr().Add(expr).normalize()
	b.objective = &Objective{Terms: terms, Offset: offset, Maximize: maximize}
}

// Model freezes the builder into a validated Model. The builder may keep
// being used; later changes do not affect the returned model.
func (b *Builder) Model() (*Model, error) {
	m := &Model{
		Name:        b.name,
		Domains:     append([]Domain(nil), b.domains...),
		VarNames:    append([]string(nil), b.names...),
		Intervals:   append([]Interval(nil), b.intervals...),
		Linears:     make([]LinearConstraint, len(b.linears)),
		Cumulatives: make([]CumulativeConstraint, len(b.cumulatives)),
		Strategies:  make([]DecisionStrategy, len(b.strategies)),
	}
	for i, c := range b.linears {
		c.Terms = append([]Term(nil), c.Terms...)
		c.Enforcement = append([]Literal(nil), c.Enforcement...)
		m.Linears[i] = c
	}
	for i, c := range b.cumulatives {
		c.Intervals = append([]int(nil), c.Intervals...)
		c.Demands = append([]int64(nil), c.Demands...)
		m.Cumulatives[i] = c
	}
	for i, s := range b.strategies {
		s.Vars = append([]int(nil), s.Vars...)
		m.Strategies[i] = s
	}
	if b.objective != nil {
		obj := *b.objective
		obj.Terms = append([]Term(nil), obj.Terms...)
		m.Objective = &obj
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("build %q: %w", b.name, err)
	}
	return m, nil
}
