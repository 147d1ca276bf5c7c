// Package harness runs conformance scenarios against an in-process
// registrar engine.
//
// Scenarios are YAML files: a setup section that establishes initial
// state and a flow section of protocol commands with expected
// responses. The harness executes the flow through the real session
// dispatcher, so a scenario exercises exactly what a client on the
// wire would see, and compares transcripts against golden files.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Setup contains commands run before the main flow to establish
	// initial state. Setup commands must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the main test flow - commands with expected
	// responses.
	Flow []Step `yaml:"flow"`
}

// Step is a single protocol command with its arguments and an
// optional expectation on the response.
type Step struct {
	// Command is the protocol command tag (e.g. "register_course").
	Command string `yaml:"command"`

	// Args contains the request fields as a map, using wire field
	// names (username, course_name, capacity, ...).
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Expect specifies the expected response. If nil, the step's
	// response is recorded but not validated.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected response fields. Only set fields are
// validated.
type Expect struct {
	// Status is the expected envelope status ("success" or "error").
	Status string `yaml:"status"`

	// Code is the expected error code (error responses only).
	Code string `yaml:"code,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if len(sc.Flow) == 0 {
		return nil, fmt.Errorf("scenario %s: empty flow", path)
	}
	for i, step := range sc.Flow {
		if step.Command == "" {
			return nil, fmt.Errorf("scenario %s: flow step %d: missing command", path, i)
		}
	}

	return &sc, nil
}

// LoadScenarioDir loads every *.yaml scenario in a directory, sorted
// by filename for deterministic test order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}
