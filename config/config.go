package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/report"
	"github.com/kilianp07/freightsim/core/sim"
	"github.com/kilianp07/freightsim/infra/monitoring"
	"github.com/kilianp07/freightsim/infra/mqtt"
)

// DefaultOutputPath is the run store used when output.path is unset.
const DefaultOutputPath = "runs.jsonl"

type Config struct {
	Simulation SimulationConfig  `json:"simulation"`
	Optimizer  OptimizerConfig   `json:"optimizer"`
	Solver     SolverConfig      `json:"solver"`
	Input      InputConfig       `json:"input"`
	Output     report.Config     `json:"output"`
	Metrics    metrics.Config    `json:"metrics"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Logging    LoggingConfig     `json:"logging"`
	Monitoring monitoring.Config `json:"monitoring"`
}

// Load reads the configuration file at path and applies K_ prefixed
// environment overrides, e.g. K_SIMULATION__STRATEGY=cost.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Solver.SetDefaults()
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	c.Output.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	return nil
}

// SimulationConfig selects the dispatch strategy of single runs and the
// strategies run side by side by compare. A zero buffer_seconds selects
// sim.DefaultBufferSeconds.
type SimulationConfig struct {
	sim.Config `json:",squash"`
	Strategies []string `json:"strategies"`
}

// SetDefaults fills unset fields.
func (c *SimulationConfig) SetDefaults() {
	c.Config.SetDefaults()
	if len(c.Strategies) == 0 {
		c.Strategies = []string{"fcfs", "cost", "distance", "overall_cost"}
	}
}

// Validate checks the run configuration and every compared strategy.
func (c SimulationConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	for _, name := range c.Strategies {
		sc := sim.Config{Strategy: name, BufferSeconds: c.BufferSeconds}
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InputConfig points at the scenario to simulate.
type InputConfig struct {
	Scenario string `json:"scenario"`
}
