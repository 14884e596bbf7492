package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidHorizon reports a horizon without slots or with an unusable
	// label setting.
	ErrInvalidHorizon = errors.New("horizon must have at least one slot and a HH:MM start")
	// ErrInvalidCapacity reports a negative resource capacity.
	ErrInvalidCapacity = errors.New("capacity must be non-negative")
	// ErrInvalidDuration reports a mode shorter than one slot.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrInvalidDemand reports a negative resource demand.
	ErrInvalidDemand = errors.New("demand must be non-negative")
	// ErrDemandLength reports a demand list that does not match the resources.
	ErrDemandLength = errors.New("demands length does not match resource count")
	// ErrHorizonTooLong reports a horizon above the configured slot limit.
	ErrHorizonTooLong = errors.New("horizon exceeds the slot limit")
)

// ValidationError locates an invalid input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, format string, args ...any) error {
	return &ValidationError{Field: fmt.Sprintf(format, args...), Err: err}
}

// Validate rejects malformed inputs before any model is built. It reports the
// first problem found.
func (p Problem) Validate() error {
	if p.Horizon.Slots <= 0 {
		return invalid(ErrInvalidHorizon, "horizon.slots")
	}
	if p.Horizon.SlotMinutes < 0 {
		return invalid(ErrInvalidHorizon, "horizon.slot_minutes")
	}
	if p.Horizon.Start != "" {
		if _, err := time.Parse("15:04", p.Horizon.Start); err != nil {
			return invalid(ErrInvalidHorizon, "horizon.start")
		}
	}
	for r, res := range p.Resources {
		if res.Capacity < 0 {
			return invalid(ErrInvalidCapacity, "resources[%d].capacity", r)
		}
	}
	for z, zone := range p.Zones {
		for m, mode := range zone.Modes {
			if mode.Duration <= 0 {
				return invalid(ErrInvalidDuration, "zones[%d].modes[%d].duration", z, m)
			}
			if len(mode.Demands) != len(p.Resources) {
				return invalid(ErrDemandLength, "zones[%d].modes[%d].demands", z, m)
			}
			for r, d := range mode.Demands {
				if d < 0 {
					return invalid(ErrInvalidDemand, "zones[%d].modes[%d].demands[%d]", z, m, r)
				}
			}
		}
	}
	return nil
}

// CheckSlots rejects a horizon longer than limit. A limit of zero or less
// disables the check.
func (p Problem) CheckSlots(limit int) error {
	if limit > 0 && p.Horizon.Slots > limit {
		return invalid(ErrHorizonTooLong, "horizon.slots")
	}
	return nil
}

// Runnable reports whether the mode could run alone on an empty horizon:
// it fits the horizon and no demand exceeds its resource's capacity.
func (p Problem) Runnable(m Mode) bool {
	if m.Duration > p.Horizon.Slots {
		return false
	}
	for r, d := range m.Demands {
		if d > p.Resources[r].Capacity {
			return false
		}
	}
	return true
}
