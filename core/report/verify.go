package report

import (
	"fmt"

	"github.com/kilianp07/a100/core/model"
)

// Objective returns sum(priority * finish) over the scheduled zones.
func Objective(p model.Problem, items []model.Item) int64 {
	var total int64
	for _, it := range items {
		total += int64(p.Zones[it.Zone].Priority) * int64(it.End(p.Zones))
	}
	return total
}

// Verify checks that items form a valid schedule of p: known zones and
// modes, at most one item per zone, every item inside the horizon and no
// resource above its capacity in any slot.
func Verify(p model.Problem, items []model.Item) error {
	slots := p.NumSlots()
	seen := make(map[int]bool, len(items))
	load := make([][]int, slots)
	for i := range load {
		load[i] = make([]int, len(p.Resources))
	}
	for _, it := range items {
		if it.Zone < 0 || it.Zone >= len(p.Zones) {
			return fmt.Errorf("item references unknown zone %d", it.Zone)
		}
		if seen[it.Zone] {
			return fmt.Errorf("zone %d scheduled twice", it.Zone)
		}
		seen[it.Zone] = true
		modes := p.Zones[it.Zone].Modes
		if it.Mode < 0 || it.Mode >= len(modes) {
			return fmt.Errorf("zone %d has no mode %d", it.Zone, it.Mode)
		}
		mode := modes[it.Mode]
		if it.Start < 0 || it.Start+mode.Duration > slots {
			return fmt.Errorf("zone %d runs [%d, %d) outside the horizon of %d slots",
				it.Zone, it.Start, it.Start+mode.Duration, slots)
		}
		for k := it.Start; k < it.Start+mode.Duration; k++ {
			for r, d := range mode.Demands {
				load[k][r] += d
				if load[k][r] > p.Resources[r].Capacity {
					return fmt.Errorf("%s over capacity at slot %d: %d > %d",
						p.ResourceName(r), k, load[k][r], p.Resources[r].Capacity)
				}
			}
		}
	}
	return nil
}
