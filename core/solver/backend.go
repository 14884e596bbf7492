package solver

import (
	"context"
	"errors"

	"github.com/kilianp07/a100/core/cpmodel"
	"github.com/kilianp07/a100/core/factory"
)

// Backend solves constraint optimization models. Implementations must be
// safe for concurrent use: every call receives its own Model.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Solve blocks until a terminal status is reached, the parameters' budget
	// is exhausted or ctx is done. A nil error does not imply a solution:
	// callers must inspect Response.Status.
	Solve(ctx context.Context, m *cpmodel.Model, p cpmodel.Parameters) (*cpmodel.Response, error)
}

// ErrNilModel is returned when a backend is asked to solve nothing.
var ErrNilModel = errors.New("nil model")

var registry = factory.NewRegistry[Backend]()

// Register adds a backend factory under name.
func Register(name string, f factory.Factory[Backend]) error {
	return registry.Register(name, f)
}

// New instantiates the backend described by cfg.
func New(cfg factory.ModuleConfig) (Backend, error) {
	return registry.Create(cfg)
}

// Names lists the registered backends.
func Names() []string { return registry.Types() }

func init() {
	_ = Register("search", func(conf map[string]any) (Backend, error) {
		var c SearchConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSearchBackend(c, nil), nil
	})
}
