package model

import (
	"fmt"
	"time"
)

const (
	// DefaultSlotMinutes is the length of one slot when the horizon omits it.
	DefaultSlotMinutes = 30
	// DefaultDayStart labels slot 0 when the horizon omits it.
	DefaultDayStart = "11:00"
)

// Horizon is the discrete time line shared by every zone.
type Horizon struct {
	Slots       int    `json:"slots" yaml:"slots"`
	SlotMinutes int    `json:"slot_minutes,omitempty" yaml:"slot_minutes,omitempty"`
	Start       string `json:"start,omitempty" yaml:"start,omitempty"`
}

// WithDefaults fills the label settings left empty.
func (h Horizon) WithDefaults() Horizon {
	if h.SlotMinutes == 0 {
		h.SlotMinutes = DefaultSlotMinutes
	}
	if h.Start == "" {
		h.Start = DefaultDayStart
	}
	return h
}

// Problem is one scheduling request. It is owned by the caller and must not
// change while a solve is running.
type Problem struct {
	Resources []Resource `json:"resources" yaml:"resources"`
	Horizon   Horizon    `json:"horizon" yaml:"horizon"`
	Zones     []Zone     `json:"zones" yaml:"zones"`
}

// NumSlots returns the horizon length.
func (p Problem) NumSlots() int { return p.Horizon.Slots }

// Capacities returns the per-resource capacities in resource order.
func (p Problem) Capacities() []int {
	caps := make([]int, len(p.Resources))
	for i, r := range p.Resources {
		caps[i] = r.Capacity
	}
	return caps
}

// ZoneName returns the zone name, or "Zone n" (1-based) when unnamed.
func (p Problem) ZoneName(i int) string {
	if n := p.Zones[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("Zone %d", i+1)
}

// ResourceName returns the resource name, or "resource n" when unnamed.
func (p Problem) ResourceName(i int) string {
	if n := p.Resources[i].Name; n != "" {
		return n
	}
	return fmt.Sprintf("resource %d", i)
}

// SlotLabel returns the wall clock label of the boundary before slot i,
// e.g. "11:30" for i=1 with the default horizon.
func (p Problem) SlotLabel(i int) string {
	h := p.Horizon.WithDefaults()
	t0, err := time.Parse("15:04", h.Start)
	if err != nil || h.SlotMinutes < 0 {
		return fmt.Sprintf("t%d", i)
	}
	return t0.Add(time.Duration(i*h.SlotMinutes) * time.Minute).Format("15:04")
}

// FromCapacities builds a problem from the bare inputs of a solve call:
// zones, the horizon length and the per-resource capacities.
func FromCapacities(zones []Zone, numSlots int, capacities []int) Problem {
	res := make([]Resource, len(capacities))
	for i, c := range capacities {
		res[i] = Resource{Capacity: c}
	}
	return Problem{Resources: res, Horizon: Horizon{Slots: numSlots}, Zones: zones}
}
