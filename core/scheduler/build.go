package scheduler

import (
	"fmt"
	"sort"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/model"
)

// Compiled is the constraint model of a problem together with the handles
// needed to read a solution back.
type Compiled struct {
	Problem  model.Problem
	Model    *cpmodel.Model
	Starts   []cpmodel.IntVar
	Literals [][]cpmodel.BoolVar
	// Intervals[z][m] is present iff Literals[z][m] is true.
	Intervals [][]cpmodel.IntervalVar
	Actives   []cpmodel.BoolVar
	Finishes  []cpmodel.IntVar
	// Stranded lists zones with a positive priority that offer modes but
	// none that can ever run. They are forced active, which makes the model
	// infeasible.
	Stranded []int
}

// Build validates p and encodes it as a constraint model:
//
//   - start_z in [0, T-1], finish_z in [0, T], one literal per mode;
//   - an optional interval of the mode duration per mode, on start_z;
//   - sum(literals_z) == active_z;
//   - finish_z == start_z + sum(duration * literal) when active_z,
//     finish_z == 0 and start_z == 0 otherwise;
//   - one cumulative per resource over the intervals demanding it;
//   - maximize sum(priority_z * finish_z).
//
// A zone the caller wants scheduled (positive priority) whose modes can never
// run is forced active, so the request is reported infeasible rather than
// answered with a schedule that silently drops it. Zones with a priority of
// zero or less lose nothing by idling and are left to the objective.
func Build(p model.Problem) (*Compiled, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	horizon := int64(p.NumSlots())
	n := len(p.Zones)
	c := &Compiled{
		Problem:   p,
		Starts:    make([]cpmodel.IntVar, n),
		Literals:  make([][]cpmodel.BoolVar, n),
		Intervals: make([][]cpmodel.IntervalVar, n),
		Actives:   make([]cpmodel.BoolVar, n),
		Finishes:  make([]cpmodel.IntVar, n),
	}

	b := cpmodel.NewBuilder()
	b.SetName("zone_schedule")
	cumulatives := make([]cpmodel.Cumulative, len(p.Resources))
	for r, res := range p.Resources {
		cumulatives[r] = b.AddCumulative(int64(res.Capacity))
	}

	objective := cpmodel.NewLinearExpr()
	for z, zone := range p.Zones {
		start := b.NewIntVar(0, horizon-1).WithName(fmt.Sprintf("start_%d", z))
		active := b.NewBoolVar().WithName(fmt.Sprintf("active_%d", z))
		finish := b.NewIntVar(0, horizon).WithName(fmt.Sprintf("finish_%d", z))

		selected := cpmodel.NewLinearExpr()
		end := cpmodel.NewLinearExpr().Add(start)
		runnable := false
		for m, mode := range zone.Modes {
			lit := b.NewBoolVar().WithName(fmt.Sprintf("mode_%d_%d", z, m))
			iv := b.NewOptionalFixedSizeIntervalVar(start, int64(mode.Duration), lit)
			for r, demand := range mode.Demands {
				if demand > 0 {
					cumulatives[r].AddDemand(iv, int64(demand))
				}
			}
			selected.Add(lit)
			end.AddTerm(lit, int64(mode.Duration))
			runnable = runnable || p.Runnable(mode)
			c.Literals[z] = append(c.Literals[z], lit)
			c.Intervals[z] = append(c.Intervals[z], iv)
		}
		b.AddEquality(selected, active)
		b.AddEquality(finish, end).OnlyEnforceIf(active)
		b.AddEquality(finish, cpmodel.NewConstant(0)).OnlyEnforceIf(active.Not())
		// an idle zone keeps start 0
		b.AddEquality(start, cpmodel.NewConstant(0)).OnlyEnforceIf(active.Not())
		if len(zone.Modes) > 0 && !runnable && zone.Priority > 0 {
			b.AddEquality(active, cpmodel.NewConstant(1))
			c.Stranded = append(c.Stranded, z)
		}
		objective.AddTerm(finish, int64(zone.Priority))

		c.Starts[z], c.Actives[z], c.Finishes[z] = start, active, finish
	}

	addStrategies(b, c)
	b.Maximize(objective)

	m, err := b.Model()
	if err != nil {
		return nil, err
	}
	c.Model = m
	return c, nil
}

// addStrategies branches on high priority zones first, trying to run them
// as late as possible. Zones with a negative priority prefer to stay idle.
func addStrategies(b *cpmodel.Builder, c *Compiled) {
	order := make([]int, len(c.Starts))
	for i := range order {
		order[i] = i
	}
	zones := c.Problem.Zones
	sort.SliceStable(order, func(i, j int) bool {
		return zones[order[i]].Priority > zones[order[j]].Priority
	})
	for _, z := range order {
		reduction := cpmodel.SelectMaxValue
		if zones[z].Priority < 0 {
			reduction = cpmodel.SelectMinValue
		}
		lits := make([]cpmodel.Variable, len(c.Literals[z]))
		for m, l := range c.Literals[z] {
			lits[m] = l
		}
		if len(lits) > 0 {
			b.AddDecisionStrategy(reduction, lits...)
		}
		b.AddDecisionStrategy(reduction, c.Starts[z])
	}
}
