package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/freightsim/core/factory"
)

// ErrUnknownStrategy is returned for strategy names with no registration.
var ErrUnknownStrategy = errors.New("unknown dispatch strategy")

var strategies = factory.NewRegistry[Strategy]()

func init() {
	for _, s := range []Strategy{FCFS{}, Cost{}, Distance{}, OverallCost{}} {
		s := s
		strategies.MustRegister(s.Name(), func(map[string]any) (Strategy, error) { return s, nil })
	}
}

// RegisterStrategy adds a strategy factory under name.
func RegisterStrategy(name string, f factory.Factory[Strategy]) error {
	return strategies.Register(name, f)
}

// NewStrategy creates the strategy registered under name.
func NewStrategy(name string) (Strategy, error) {
	s, err := strategies.Create(factory.ModuleConfig{Type: name})
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, name, strategies.Names())
	}
	return s, err
}

// StrategyNames lists the registered strategy names.
func StrategyNames() []string {
	return strategies.Names()
}
