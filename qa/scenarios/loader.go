// Package scenarios replays YAML scheduling scenarios through the scheduler,
// its solve log, the metrics collector and the schedule forwarder.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/a100/core/model"
)

// Outcomes a scenario can expect.
const (
	OutcomeOptimal    = "optimal"
	OutcomeInfeasible = "infeasible"
	OutcomeInvalid    = "invalid"
)

type Expected struct {
	Outcome   string       `yaml:"outcome"`
	Objective *int64       `yaml:"objective,omitempty"`
	Scheduled *int         `yaml:"scheduled,omitempty"`
	Items     []model.Item `yaml:"items,omitempty"`
	// Disjoint lists zone pairs whose intervals must not overlap.
	Disjoint [][2]int `yaml:"disjoint,omitempty"`
}

type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Problem     model.Problem `yaml:"problem"`
	Expected    Expected      `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	switch sc.Expected.Outcome {
	case OutcomeOptimal, OutcomeInfeasible, OutcomeInvalid:
	default:
		return nil, fmt.Errorf("%s: unknown outcome %q", path, sc.Expected.Outcome)
	}
	sc.Problem.Horizon = sc.Problem.Horizon.WithDefaults()
	return &sc, nil
}
