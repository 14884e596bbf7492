package report

import (
	"github.com/kilianp07/a100/core/model"
)

// Workload is the summed demand per slot and per resource. Rows start at
// the earliest scheduled start: Usage[i] describes slot First+i.
type Workload struct {
	First int      `json:"first"`
	Usage [][]int  `json:"usage"`
	Rows  []string `json:"rows"`
	Names []string `json:"resources"`
}

// ComputeWorkload sums the demands of items over their slots. An empty
// schedule yields no rows.
func ComputeWorkload(p model.Problem, items []model.Item) Workload {
	slots := p.NumSlots()
	first := slots
	for _, it := range items {
		if it.Start < first {
			first = it.Start
		}
	}
	w := Workload{First: first, Names: make([]string, len(p.Resources))}
	for r := range p.Resources {
		w.Names[r] = p.ResourceName(r)
	}
	if first >= slots {
		return w
	}
	w.Usage = make([][]int, slots-first)
	w.Rows = make([]string, slots-first)
	for i := range w.Usage {
		w.Usage[i] = make([]int, len(p.Resources))
		w.Rows[i] = p.SlotLabel(first+i) + " - " + p.SlotLabel(first+i+1)
	}
	for _, it := range items {
		mode := p.Zones[it.Zone].Modes[it.Mode]
		for k := it.Start; k < it.Start+mode.Duration && k < slots; k++ {
			for r, d := range mode.Demands {
				w.Usage[k-first][r] += d
			}
		}
	}
	return w
}

// Column returns the usage of resource r over the rows.
func (w Workload) Column(r int) []float64 {
	col := make([]float64, len(w.Usage))
	for i, row := range w.Usage {
		col[i] = float64(row[r])
	}
	return col
}
