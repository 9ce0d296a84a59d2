package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end mutation test case.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name, so keep it filesystem-safe.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the starting content of the target file, one int per
	// byte (0-255). Empty means the scenario starts from an empty file.
	Initial []int `yaml:"initial"`

	// Steps are the mutations to apply, in order.
	Steps []Step `yaml:"steps"`

	// Final is the expected content after all steps, one int per byte.
	// Nil skips the content check; an explicit empty list asserts an
	// empty file.
	Final *[]int `yaml:"final,omitempty"`
}

// Step is a single mutation within a scenario.
type Step struct {
	// Op is "replace", "remove" or "add".
	Op string `yaml:"op"`

	// Position is the zero-indexed byte offset.
	Position int64 `yaml:"position"`

	// Value is the byte to write (0-255). Required for replace and add,
	// forbidden for remove.
	Value *int `yaml:"value,omitempty"`

	// WantError names the error code this step must fail with
	// (e.g. "INVALID_INPUT"). Empty means the step must succeed.
	WantError string `yaml:"want_error,omitempty"`
}

// Load reads and parses a scenario YAML file. Unknown fields are
// rejected so typos in hand-written scenarios fail loudly.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

// LoadDir loads every .yaml scenario in a directory, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		sc, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sc.Name]; ok {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", sc.Name, prev, path)
		}
		seen[sc.Name] = path
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if err := validateBytes("initial", sc.Initial); err != nil {
		return err
	}
	if sc.Final != nil {
		if err := validateBytes("final", *sc.Final); err != nil {
			return err
		}
	}

	for i, step := range sc.Steps {
		switch step.Op {
		case "replace", "add":
			if step.Value == nil {
				return fmt.Errorf("step %d: op %q requires a value", i, step.Op)
			}
			if *step.Value < 0 || *step.Value > 255 {
				return fmt.Errorf("step %d: value %d out of byte range", i, *step.Value)
			}
		case "remove":
			if step.Value != nil {
				return fmt.Errorf("step %d: op \"remove\" takes no value", i)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}
	return nil
}

func validateBytes(field string, vals []int) error {
	for i, v := range vals {
		if v < 0 || v > 255 {
			return fmt.Errorf("%s[%d]: value %d out of byte range", field, i, v)
		}
	}
	return nil
}

func toBytes(vals []int) []byte {
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}
	return out
}
