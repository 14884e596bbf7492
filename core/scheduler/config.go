package scheduler

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/factory"
)

// Config holds the solve settings of a Scheduler.
type Config struct {
	// Backend selects the optimization backend module.
	Backend factory.ModuleConfig `json:"backend"`
	// TimeLimitSeconds bounds each solve. Zero means no limit.
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	// MaxBranches bounds the search tree size. Zero means no limit.
	MaxBranches int64 `json:"max_branches"`
	// NumWorkers is the number of parallel search workers.
	NumWorkers int `json:"num_workers"`
	// MaxSlots rejects problems with a longer horizon. Zero disables the
	// check; SetDefaults applies DefaultMaxSlots.
	MaxSlots int `json:"max_slots"`
}

// DefaultMaxSlots is one week of one-minute slots.
const DefaultMaxSlots = 7 * 24 * 60

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend.Type == "" {
		c.Backend.Type = "search"
	}
	if c.TimeLimitSeconds == 0 {
		c.TimeLimitSeconds = 60
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = runtime.GOMAXPROCS(0)
	}
	if c.MaxSlots == 0 {
		c.MaxSlots = DefaultMaxSlots
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Backend.Type == "" {
		return fmt.Errorf("backend type is required")
	}
	if c.TimeLimitSeconds < 0 {
		return fmt.Errorf("time_limit_seconds must not be negative")
	}
	if c.MaxBranches < 0 {
		return fmt.Errorf("max_branches must not be negative")
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("num_workers must not be negative")
	}
	if c.MaxSlots < 0 {
		return fmt.Errorf("max_slots must not be negative")
	}
	return nil
}

// Parameters converts the settings into backend parameters.
func (c Config) Parameters() cpmodel.Parameters {
	return cpmodel.Parameters{
		MaxTime:     time.Duration(c.TimeLimitSeconds * float64(time.Second)),
		MaxBranches: c.MaxBranches,
		NumWorkers:  c.NumWorkers,
	}
}
