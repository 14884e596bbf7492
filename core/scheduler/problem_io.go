package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/a100/core/model"
)

// LoadProblem loads a Problem from a JSON or YAML file. Missing label
// settings of the horizon get their defaults.
func LoadProblem(path string) (model.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Problem{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	p, err := DecodeProblem(f, ext)
	if err != nil {
		return p, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

// DecodeProblem reads from r to decode a Problem in the given format.
func DecodeProblem(r io.Reader, format string) (model.Problem, error) {
	var p model.Problem
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return p, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, err
		}
	default:
		return p, fmt.Errorf("unsupported format: %s", format)
	}
	p.Horizon = p.Horizon.WithDefaults()
	return p, nil
}
