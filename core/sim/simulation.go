package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/freightsim/core/dispatch"
	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/scheduler"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

var (
	// ErrNoVehicles is returned when a run has no fleet.
	ErrNoVehicles = errors.New("no vehicles")
	// ErrDuplicateVehicle is returned when two vehicles share an id.
	ErrDuplicateVehicle = errors.New("duplicate vehicle id")
	// ErrDuplicateFreight is returned when two freights share an id.
	ErrDuplicateFreight = errors.New("duplicate freight id")
)

// Input is the fleet and backlog of a run.
type Input struct {
	Freights []model.Freight
	Vehicles []model.Vehicle
}

// Validate checks the input records.
func (in Input) Validate() error {
	if len(in.Vehicles) == 0 {
		return ErrNoVehicles
	}
	seen := make(map[string]struct{}, len(in.Vehicles))
	for _, v := range in.Vehicles {
		if err := v.Validate(); err != nil {
			return err
		}
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateVehicle, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(in.Freights))
	for _, f := range in.Freights {
		if err := f.Validate(); err != nil {
			return err
		}
		if _, ok := seen[f.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateFreight, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// Output is the result of a run.
type Output struct {
	RunID    string                   `json:"run_id"`
	Strategy string                   `json:"strategy"`
	Origin   time.Time                `json:"origin,omitempty"`
	Horizon  float64                  `json:"horizon"`
	Freights []model.FreightResult    `json:"freights"`
	Vehicles []model.VehicleAggregate `json:"vehicles"`
	Summary  model.RunSummary         `json:"summary"`
}

// Simulation runs a dispatch strategy over an input.
type Simulation struct {
	cfg      Config
	strategy dispatch.Strategy
	log      logger.Logger
	bus      eventbus.EventBus
}

// New validates cfg and resolves its strategy. log and bus may be nil.
func New(cfg Config, log logger.Logger, bus eventbus.EventBus) (*Simulation, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := dispatch.NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return NewWithStrategy(s, cfg, log, bus), nil
}

// NewWithStrategy uses s instead of looking up cfg.Strategy.
func NewWithStrategy(s dispatch.Strategy, cfg Config, log logger.Logger, bus eventbus.EventBus) *Simulation {
	cfg.SetDefaults()
	cfg.Strategy = s.Name()
	return &Simulation{cfg: cfg, strategy: s, log: logger.OrNop(log), bus: bus}
}

// Strategy returns the strategy name.
func (s *Simulation) Strategy() string { return s.strategy.Name() }

// Run simulates in until the horizon, the latest delivery target plus the
// configured buffer. Per-freight failures are part of the output, only
// invalid input returns an error.
func (s *Simulation) Run(ctx context.Context, in Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	start := time.Now()
	runID := uuid.NewString()
	freights, origin := model.NormalizeFreights(in.Freights)
	horizon := model.LatestDelivery(freights) + s.cfg.BufferSeconds

	sched := scheduler.New()
	results := NewResults(in.Vehicles)
	table := dispatch.NewRuntimeTable(in.Vehicles)
	procs := make(map[string]*VehicleProcess, len(in.Vehicles))
	for _, v := range in.Vehicles {
		p := newVehicleProcess(v, sched, results, s.log, s.bus, runID)
		procs[v.ID] = p
		sched.After(0, p)
	}
	d := newDispatcherProcess(s.strategy, table, procs, freights, horizon, sched, results, s.log, s.bus, runID)
	sched.After(0, d)

	s.log.Infof("run %s: strategy=%s freights=%d vehicles=%d horizon=%.0fs",
		runID, s.strategy.Name(), len(freights), len(in.Vehicles), horizon)
	executed := sched.RunUntil(horizon)
	if n := d.Remaining(); n > 0 {
		s.log.Warnf("run %s: %d freights not dispatched before horizon", runID, n)
		d.abandon(sched.Now())
	}

	results.Finalize(horizon)
	summary := results.Summary()
	summary.RunID = runID
	summary.Strategy = s.strategy.Name()
	summary.Horizon = horizon
	summary.Events = executed
	summary.WallTime = time.Since(start)
	runDuration.WithLabelValues(s.strategy.Name()).Observe(summary.WallTime.Seconds())

	s.log.Infow("run finished", map[string]any{
		"run_id":      runID,
		"strategy":    s.strategy.Name(),
		"assigned":    summary.Assigned,
		"unassigned":  summary.Unassigned,
		"distance_km": summary.TotalDistanceKm,
		"events":      executed,
	})
	return &Output{
		RunID:    runID,
		Strategy: s.strategy.Name(),
		Origin:   origin,
		Horizon:  horizon,
		Freights: results.Freights(),
		Vehicles: results.Vehicles(),
		Summary:  summary,
	}, nil
}
