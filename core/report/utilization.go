package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/a100/core/model"
)

// Utilization summarizes the load of one resource over the whole horizon.
type Utilization struct {
	Resource string  `json:"resource"`
	Capacity int     `json:"capacity"`
	Peak     float64 `json:"peak"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stddev"`
	// Ratio is the consumed share of the capacity offered by the horizon.
	Ratio float64 `json:"ratio"`
}

// ComputeUtilization returns one Utilization per resource. Slots before the
// first start count as idle.
func ComputeUtilization(p model.Problem, items []model.Item) []Utilization {
	w := ComputeWorkload(p, items)
	slots := p.NumSlots()
	out := make([]Utilization, len(p.Resources))
	for r, res := range p.Resources {
		load := make([]float64, slots)
		copy(load[w.First:], w.Column(r))
		u := Utilization{Resource: w.Names[r], Capacity: res.Capacity}
		if slots > 0 {
			u.Peak = floats.Max(load)
			u.Mean = stat.Mean(load, nil)
		}
		if slots > 1 {
			u.StdDev = stat.StdDev(load, nil)
		}
		if offered := float64(res.Capacity * slots); offered > 0 {
			u.Ratio = floats.Sum(load) / offered
		}
		out[r] = u
	}
	return out
}
