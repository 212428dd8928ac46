package sim

import (
	"fmt"

	"github.com/kilianp07/freightsim/core/dispatch"
)

// DefaultBufferSeconds is the time added after the latest delivery target
// before the run stops.
const DefaultBufferSeconds = 7200.0

// Config controls a simulation run. A zero BufferSeconds selects
// DefaultBufferSeconds, so the smallest configurable buffer is any positive
// value.
type Config struct {
	Strategy      string  `json:"strategy" yaml:"strategy" koanf:"strategy"`
	BufferSeconds float64 `json:"buffer_seconds" yaml:"buffer_seconds" koanf:"buffer_seconds"`
}

// SetDefaults fills unset fields. Zero counts as unset.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = dispatch.FCFS{}.Name()
	}
	if c.BufferSeconds == 0 {
		c.BufferSeconds = DefaultBufferSeconds
	}
}

// Validate checks the configuration before a run.
func (c Config) Validate() error {
	if c.BufferSeconds < 0 {
		return fmt.Errorf("buffer_seconds must not be negative")
	}
	if _, err := dispatch.NewStrategy(c.Strategy); err != nil {
		return err
	}
	return nil
}
