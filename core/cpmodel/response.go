package cpmodel

import (
	"fmt"
	"strings"
	"time"
)

// Status is the terminal state of a solve.
type Status int

const (
	// Unknown means the search stopped before finding any solution.
	Unknown Status = iota
	// ModelInvalid means the backend rejected the model.
	ModelInvalid
	// Feasible means a solution was found but not proven optimal.
	Feasible
	// Infeasible means the model admits no solution.
	Infeasible
	// Optimal means the returned solution is proven optimal.
	Optimal
)

var statusNames = [...]string{
	Unknown:      "UNKNOWN",
	ModelInvalid: "MODEL_INVALID",
	Feasible:     "FEASIBLE",
	Infeasible:   "INFEASIBLE",
	Optimal:      "OPTIMAL",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return Status(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown status %q", name)
}

// Parameters bound a solve. Zero values mean "no limit" for MaxTime and
// MaxBranches and "backend default" for NumWorkers.
type Parameters struct {
	MaxTime     time.Duration
	MaxBranches int64
	NumWorkers  int
}

// Response is the answer of a backend.
type Response struct {
	Status         Status
	Values         []int64
	ObjectiveValue int64
	BestBound      int64
	Branches       int64
	WallTime       time.Duration
	Backend        string
}

// HasSolution reports whether the response carries an assignment.
func (r *Response) HasSolution() bool {
	return r != nil && (r.Status == Optimal || r.Status == Feasible) && len(r.Values) > 0
}

// SolutionIntegerValue returns the value of v in the response solution.
func SolutionIntegerValue(r *Response, v IntVar) int64 {
	return r.Values[v.index]
}

// SolutionBooleanValue returns the value of the literal v in the response
// solution.
func SolutionBooleanValue(r *Response, v BoolVar) bool {
	return LiteralValue(r.Values, v.Literal())
}
