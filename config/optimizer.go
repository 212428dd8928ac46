package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/freightsim/core/optimize"
)

// OptimizerConfig enables the local search pass after a run. Zero
// max_iterations and epsilon select the defaults.
type OptimizerConfig struct {
	Enabled       bool    `json:"enabled"`
	MaxIterations int     `json:"max_iterations"`
	TimeLimitMS   int     `json:"time_limit_ms"`
	Epsilon       float64 `json:"epsilon"`
}

// SetDefaults fills unset fields.
func (c *OptimizerConfig) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = optimize.DefaultMaxIterations
	}
	if c.Epsilon == 0 {
		c.Epsilon = optimize.DefaultEpsilon
	}
}

// Validate checks the optimizer settings.
func (c OptimizerConfig) Validate() error {
	if c.TimeLimitMS < 0 {
		return fmt.Errorf("time_limit_ms must not be negative")
	}
	return c.Options().Validate()
}

// Options converts the section into local search options.
func (c OptimizerConfig) Options() optimize.Options {
	return optimize.Options{
		MaxIterations: c.MaxIterations,
		TimeLimit:     time.Duration(c.TimeLimitMS) * time.Millisecond,
		Epsilon:       c.Epsilon,
	}
}

// SolverConfig enables the exact LP solver after a run. Zero time_limit_ms
// and max_variables select the defaults.
type SolverConfig struct {
	Enabled      bool `json:"enabled"`
	TimeLimitMS  int  `json:"time_limit_ms"`
	MaxVariables int  `json:"max_variables"`
}

// SetDefaults fills unset fields.
func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitMS == 0 {
		c.TimeLimitMS = 30000
	}
	if c.MaxVariables == 0 {
		c.MaxVariables = optimize.DefaultMaxVariables
	}
}

// Validate checks the solver settings.
func (c SolverConfig) Validate() error {
	if c.TimeLimitMS < 0 {
		return fmt.Errorf("time_limit_ms must not be negative")
	}
	if c.MaxVariables < 0 {
		return fmt.Errorf("max_variables must not be negative")
	}
	return nil
}

// TimeLimit returns the solver time limit.
func (c SolverConfig) TimeLimit() time.Duration {
	return time.Duration(c.TimeLimitMS) * time.Millisecond
}
