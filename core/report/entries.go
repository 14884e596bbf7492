package report

import "github.com/kilianp07/a100/core/model"

// Entry is a scheduled item resolved against its problem.
type Entry struct {
	Zone       int    `json:"zone"`
	Name       string `json:"name"`
	Mode       int    `json:"mode"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
	Demands    []int  `json:"demands"`
}

// Entries resolves items in their given order.
func Entries(p model.Problem, items []model.Item) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		end := it.End(p.Zones)
		out[i] = Entry{
			Zone:       it.Zone,
			Name:       p.ZoneName(it.Zone),
			Mode:       it.Mode,
			Start:      it.Start,
			End:        end,
			StartLabel: p.SlotLabel(it.Start),
			EndLabel:   p.SlotLabel(end),
			Demands:    p.Zones[it.Zone].Modes[it.Mode].Demands,
		}
	}
	return out
}
