package model

import "fmt"

// demoModes are the mode tables cycled over the demo zones. Columns are the
// cleaners demand, the tractors demand and the duration in slots.
var demoModes = [][][3]int{
	{{5, 0, 4}, {2, 1, 2}},
	{{3, 0, 3}, {1, 1, 2}},
	{{4, 0, 4}, {2, 1, 2}},
}

var demoPriorities = []int{7, 7, 1, 5, 9, 8}

// Demo returns the reference instance: ten cleaners and one tractor over
// fourteen half-hour slots from 11:00, and six zones.
func Demo() Problem {
	p := Problem{
		Resources: []Resource{{Name: "cleaners", Capacity: 10}, {Name: "tractors", Capacity: 1}},
		Horizon:   Horizon{Slots: 14, SlotMinutes: DefaultSlotMinutes, Start: DefaultDayStart},
	}
	for i, prio := range demoPriorities {
		table := demoModes[i%len(demoModes)]
		modes := make([]Mode, len(table))
		for m, row := range table {
			modes[m] = Mode{Duration: row[2], Demands: []int{row[0], row[1]}}
		}
		p.Zones = append(p.Zones, Zone{Name: fmt.Sprintf("Zone %d", i+1), Priority: prio, Modes: modes})
	}
	return p
}
