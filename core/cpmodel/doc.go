// Package cpmodel describes constraint optimization problems independently of
// the backend that solves them.
//
// The builder mirrors the CP-SAT builder API: integer and Boolean variables,
// optional fixed-size intervals, linear constraints that can be enforced by
// literals, cumulative resource constraints, decision strategy hints and a
// linear objective. Model freezes and validates a builder; backends consume
// the resulting Model and answer with a Response.
//
//	b := cpmodel.NewBuilder()
//	x := b.NewIntVar(0, 10).WithName("x")
//	on := b.NewBoolVar().WithName("on")
//	iv := b.NewOptionalFixedSizeIntervalVar(x, 3, on)
//	b.AddCumulative(2).AddDemand(iv, 1)
//	b.Maximize(cpmodel.NewLinearExpr().Add(x))
//	m, err := b.Model()
package cpmodel
