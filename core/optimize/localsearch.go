package optimize

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/freightsim/core/events"
	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

const (
	// DefaultEpsilon is the smallest accepted improvement, in km.
	DefaultEpsilon = 0.01
	// DefaultMaxIterations bounds the number of accepted moves.
	DefaultMaxIterations = 1000
)

// Options bound a local search run. A zero TimeLimit means no wall-clock
// budget. Zero MaxIterations and Epsilon select the defaults; to skip local
// search disable the optimizer stage instead.
type Options struct {
	MaxIterations int           `json:"max_iterations" yaml:"max_iterations" koanf:"max_iterations"`
	TimeLimit     time.Duration `json:"time_limit" yaml:"time_limit" koanf:"time_limit"`
	Epsilon       float64       `json:"epsilon" yaml:"epsilon" koanf:"epsilon"`
}

// SetDefaults fills unset fields. Zero counts as unset.
func (o *Options) SetDefaults() {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}
	if o.TimeLimit < 0 {
		return fmt.Errorf("time_limit must not be negative")
	}
	if o.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative")
	}
	return nil
}

// Result is the outcome of a local search run.
type Result struct {
	Assignment       model.Assignment `json:"assignment"`
	Objective        float64          `json:"objective"`
	InitialObjective float64          `json:"initial_objective"`
	Iterations       int              `json:"iterations"`
	Elapsed          time.Duration    `json:"elapsed"`
	ImprovementPct   float64          `json:"improvement_pct"`
	// Skipped lists freights left untouched because their freight or
	// vehicle is unknown.
	Skipped []string `json:"skipped,omitempty"`
}

// LocalSearch reassigns single freights between vehicles with a
// first-improvement rule.
type LocalSearch struct {
	opts Options
	log  logger.Logger
	bus  eventbus.EventBus
	now  func() time.Time
}

// NewLocalSearch returns a LocalSearch. log and bus may be nil.
func NewLocalSearch(opts Options, log logger.Logger, bus eventbus.EventBus) *LocalSearch {
	opts.SetDefaults()
	return &LocalSearch{opts: opts, log: logger.OrNop(log), bus: bus, now: time.Now}
}

// Run improves initial. The budget and ctx are checked between full scans
// only, so a scan in progress always completes.
func (ls *LocalSearch) Run(ctx context.Context, initial model.Assignment, freights []model.Freight, vehicles []model.Vehicle) (Result, error) {
	if err := ls.opts.Validate(); err != nil {
		return Result{}, err
	}
	start := ls.now()
	m := BuildDistanceMatrix(freights, vehicles)
	vIdx := make(map[string]int, len(vehicles))
	for i, v := range vehicles {
		if _, dup := vIdx[v.ID]; !dup {
			vIdx[v.ID] = i
		}
	}
	fIdx := make(map[string]int, len(freights))
	for j, f := range freights {
		fIdx[f.ID] = j
	}

	res := Result{Assignment: initial.Clone()}
	// cur[j] is the vehicle index of freight j, -1 when not movable
	cur := make([]int, len(freights))
	load := make([]float64, len(vehicles))
	for j, f := range freights {
		cur[j] = -1
		vid, ok := initial[f.ID]
		if !ok {
			continue
		}
		i, ok := vIdx[vid]
		if !ok {
			res.Skipped = append(res.Skipped, f.ID)
			continue
		}
		cur[j] = i
		load[i] += f.Weight
		res.InitialObjective += m.Km[i][j]
	}
	for fid := range initial {
		if _, ok := fIdx[fid]; !ok {
			res.Skipped = append(res.Skipped, fid)
		}
	}
	sort.Strings(res.Skipped)
	res.Objective = res.InitialObjective

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if res.Iterations >= ls.opts.MaxIterations {
			ls.log.Debugf("local search: iteration budget of %d reached", ls.opts.MaxIterations)
			break
		}
		if ls.opts.TimeLimit > 0 && ls.now().Sub(start) >= ls.opts.TimeLimit {
			ls.log.Debugf("local search: time budget of %s reached", ls.opts.TimeLimit)
			break
		}
		j, to, delta, found := ls.scan(m, freights, vehicles, cur, load)
		if !found {
			break
		}
		from := cur[j]
		f := freights[j]
		cur[j] = to
		load[from] -= f.Weight
		load[to] += f.Weight
		res.Objective += delta
		res.Iterations++
		res.Assignment[f.ID] = vehicles[to].ID
		ls.log.Debugw("local search move", map[string]any{
			"freight_id": f.ID,
			"from":       vehicles[from].ID,
			"to":         vehicles[to].ID,
			"delta_km":   delta,
		})
		if ls.bus != nil {
			ls.bus.Publish(events.ImprovementEvent{
				FreightID: f.ID,
				From:      vehicles[from].ID,
				To:        vehicles[to].ID,
				Delta:     delta,
				Iteration: res.Iterations,
			})
		}
	}

	// recompute to drop accumulated rounding
	res.Objective = 0
	for j, i := range cur {
		if i >= 0 {
			res.Objective += m.Km[i][j]
		}
	}
	res.Elapsed = ls.now().Sub(start)
	if res.InitialObjective > 0 {
		res.ImprovementPct = (res.InitialObjective - res.Objective) / res.InitialObjective * 100
	}
	ls.log.Infof("local search: %.3f km -> %.3f km (%.2f%%) in %d moves",
		res.InitialObjective, res.Objective, res.ImprovementPct, res.Iterations)
	return res, nil
}

// scan returns the first move improving the objective by more than epsilon.
// Moving freight j from vehicle a to b changes the objective by the
// difference of its two round trips, the other trips being independent.
func (ls *LocalSearch) scan(m DistanceMatrix, freights []model.Freight, vehicles []model.Vehicle, cur []int, load []float64) (int, int, float64, bool) {
	for j, from := range cur {
		if from < 0 {
			continue
		}
		w := freights[j].Weight
		for to, v := range vehicles {
			if to == from || load[to]+w > v.Capacity {
				continue
			}
			before := m.Km[from][j]
			after := m.Km[to][j]
			if delta := after - before; delta < -ls.opts.Epsilon {
				return j, to, delta, true
			}
		}
	}
	return 0, 0, 0, false
}
