package cpmodel

import (
	"fmt"
	"sort"
)

// Infinity stands for an absent bound on a linear constraint. It is far
// below the int64 limits so that bound arithmetic cannot overflow.
const Infinity int64 = 1 << 53

// Model is a frozen, validated optimization problem. Backends must treat it
// as read-only; one Model may be solved concurrently by several backends.
type Model struct {
	Name        string                 `json:"name,omitempty"`
	Domains     []Domain               `json:"domains"`
	VarNames    []string               `json:"var_names,omitempty"`
	Intervals   []Interval             `json:"intervals,omitempty"`
	Linears     []LinearConstraint     `json:"linears,omitempty"`
	Cumulatives []CumulativeConstraint `json:"cumulatives,omitempty"`
	Strategies  []DecisionStrategy     `json:"strategies,omitempty"`
	Objective   *Objective             `json:"objective,omitempty"`
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.Domains) }

// VarName returns the debug name of a variable, or "v<index>".
func (m *Model) VarName(v int) string {
	if v < len(m.VarNames) && m.VarNames[v] != "" {
		return m.VarNames[v]
	}
	return fmt.Sprintf("v%d", v)
}

func (m *Model) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidModel, fmt.Sprintf(format, args...))
}

func (m *Model) checkVar(v int) error {
	if v < 0 || v >= len(m.Domains) {
		return m.invalid("variable %d out of range", v)
	}
	return nil
}

func (m *Model) checkLiteral(l Literal) error {
	if err := m.checkVar(l.Var); err != nil {
		return err
	}
	if d := m.Domains[l.Var]; d.Min < 0 || d.Max > 1 {
		return m.invalid("literal on non Boolean variable %s", m.VarName(l.Var))
	}
	return nil
}

// Validate checks the structural soundness of the model.
func (m *Model) Validate() error {
	for i, d := range m.Domains {
		if d.Min > d.Max {
			return m.invalid("empty domain [%d, %d] for %s", d.Min, d.Max, m.VarName(i))
		}
		if d.Min < -Infinity || d.Max > Infinity {
			return m.invalid("domain of %s exceeds %d", m.VarName(i), Infinity)
		}
	}
	for i, iv := range m.Intervals {
		if err := m.checkVar(iv.Start); err != nil {
			return err
		}
		if iv.Size < 0 {
			return m.invalid("interval %d has negative size %d", i, iv.Size)
		}
		if iv.Optional {
			if err := m.checkLiteral(iv.Presence); err != nil {
				return err
			}
		}
	}
	for i, c := range m.Linears {
		if c.Lb > c.Ub {
			return m.invalid("linear constraint %d has lb %d > ub %d", i, c.Lb, c.Ub)
		}
		for _, t := range c.Terms {
			if err := m.checkVar(t.Var); err != nil {
				return err
			}
		}
		for _, l := range c.Enforcement {
			if err := m.checkLiteral(l); err != nil {
				return err
			}
		}
	}
	for i, c := range m.Cumulatives {
		if c.Capacity < 0 {
			return m.invalid("cumulative %d has negative capacity", i)
		}
		if len(c.Intervals) != len(c.Demands) {
			return m.invalid("cumulative %d has %d intervals and %d demands", i, len(c.Intervals), len(c.Demands))
		}
		for k, iv := range c.Intervals {
			if iv < 0 || iv >= len(m.Intervals) {
				return m.invalid("cumulative %d references interval %d", i, iv)
			}
			if c.Demands[k] < 0 {
				return m.invalid("cumulative %d has negative demand", i)
			}
		}
	}
	for _, s := range m.Strategies {
		for _, v := range s.Vars {
			if err := m.checkVar(v); err != nil {
				return err
			}
		}
	}
	if m.Objective != nil {
		for _, t := range m.Objective.Terms {
			if err := m.checkVar(t.Var); err != nil {
				return err
			}
		}
	}
	return nil
}

// LiteralValue evaluates a literal under a full assignment.
func LiteralValue(values []int64, l Literal) bool {
	return (values[l.Var] == 1) != l.Negated
}

// IntervalPresent reports whether the interval exists under values.
func (m *Model) IntervalPresent(values []int64, i int) bool {
	iv := m.Intervals[i]
	return !iv.Optional || LiteralValue(values, iv.Presence)
}

// ObjectiveValue evaluates the objective under values. A model without
// objective evaluates to 0.
func (m *Model) ObjectiveValue(values []int64) int64 {
	if m.Objective == nil {
		return 0
	}
	v := m.Objective.Offset
	for _, t := range m.Objective.Terms {
		v += t.Coeff * values[t.Var]
	}
	return v
}

// Check verifies that values is a complete assignment satisfying every
// constraint of the model.
func (m *Model) Check(values []int64) error {
	if len(values) != len(m.Domains) {
		return fmt.Errorf("assignment has %d values for %d variables", len(values), len(m.Domains))
	}
	for i, d := range m.Domains {
		if !d.Contains(values[i]) {
			return fmt.Errorf("%s = %d outside [%d, %d]", m.VarName(i), values[i], d.Min, d.Max)
		}
	}
	for i, c := range m.Linears {
		enforced := true
		for _, l := range c.Enforcement {
			if !LiteralValue(values, l) {
				enforced = false
				break
			}
		}
		if !enforced {
			continue
		}
		var sum int64
		for _, t := range c.Terms {
			sum += t.Coeff * values[t.Var]
		}
		if sum < c.Lb || sum > c.Ub {
			return fmt.Errorf("linear constraint %d violated: %d not in [%d, %d]", i, sum, c.Lb, c.Ub)
		}
	}
	for i, c := range m.Cumulatives {
		type event struct{ at, delta int64 }
		var evs []event
		for k, ivIdx := range c.Intervals {
			if !m.IntervalPresent(values, ivIdx) || m.Intervals[ivIdx].Size == 0 {
				continue
			}
			iv := m.Intervals[ivIdx]
			start := values[iv.Start]
			evs = append(evs, event{start, c.Demands[k]}, event{start + iv.Size, -c.Demands[k]})
		}
		// releases sort before acquisitions at the same instant
		sort.Slice(evs, func(a, b int) bool {
			if evs[a].at != evs[b].at {
				return evs[a].at < evs[b].at
			}
			return evs[a].delta < evs[b].delta
		})
		var load int64
		for _, e := range evs {
			load += e.delta
			if load > c.Capacity {
				return fmt.Errorf("cumulative %d overloaded at %d: %d > %d", i, e.at, load, c.Capacity)
			}
		}
	}
	return nil
}
