package model

// Mode is one way to execute a zone. Duration counts slots and Demands holds
// one entry per resource, in the order of Problem.Resources.
type Mode struct {
	Duration int   `json:"duration" yaml:"duration"`
	Demands  []int `json:"demands" yaml:"demands"`
}

// Zone is an independently schedulable unit of work. Its modes are mutually
// exclusive alternatives; a zone without modes can never be scheduled.
type Zone struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Priority int    `json:"priority" yaml:"priority"`
	Modes    []Mode `json:"modes" yaml:"modes"`
}

// Resource is a consumable with a per-slot capacity.
type Resource struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// Item is a scheduled zone: the index of the zone, its start slot and the
// index of the selected mode.
type Item struct {
	Zone  int `json:"zone" yaml:"zone"`
	Start int `json:"start" yaml:"start"`
	Mode  int `json:"mode" yaml:"mode"`
}

// End returns the first slot after the item, given the zones it refers to.
func (it Item) End(zones []Zone) int {
	return it.Start + zones[it.Zone].Modes[it.Mode].Duration
}
