// Package scenarios runs YAML regression cases through the simulator and
// checks the outcome of each dispatch strategy.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/freightsim/core/scenario"
)

// Expected is the outcome a strategy must reach on a case.
type Expected struct {
	Assigned   int `yaml:"assigned"`
	Unassigned int `yaml:"unassigned"`
	// Vehicles maps freight ids to the vehicle that must carry them.
	Vehicles map[string]string `yaml:"vehicles,omitempty"`
}

// Case is a scenario with per-strategy expectations.
type Case struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Scenario    scenario.Scenario   `yaml:"scenario"`
	Expected    map[string]Expected `yaml:"expected"`
}

func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Scenario.Name == "" {
		c.Scenario.Name = c.Name
	}
	return &c, nil
}
