package scheduler

import (
	"errors"
	"fmt"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/model"
)

// ErrNotOptimal is returned by Extract for any response that is not proven
// optimal.
var ErrNotOptimal = errors.New("response is not optimal")

// Extract decodes an optimal response into items, in zone order. A zone
// gets an item for its first selected mode and none when idle. The slice is
// never nil on success.
func Extract(c *Compiled, resp *cpmodel.Response) ([]model.Item, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: no response", ErrNotOptimal)
	}
	if resp.Status != cpmodel.Optimal {
		return nil, fmt.Errorf("%w: %s", ErrNotOptimal, resp.Status)
	}
	items := make([]model.Item, 0, len(c.Starts))
	for z, start := range c.Starts {
		for m, lit := range c.Literals[z] {
			if cpmodel.SolutionBooleanValue(resp, lit) {
				items = append(items, model.Item{
					Zone:  z,
					Start: int(cpmodel.SolutionIntegerValue(resp, start)),
					Mode:  m,
				})
				break
			}
		}
	}
	return items, nil
}
