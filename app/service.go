package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/freightsim/config"
	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/optimize"
	"github.com/kilianp07/freightsim/core/report"
	"github.com/kilianp07/freightsim/core/scenario"
	"github.com/kilianp07/freightsim/core/sim"
	"github.com/kilianp07/freightsim/infra/logger"
	"github.com/kilianp07/freightsim/infra/metrics"
	"github.com/kilianp07/freightsim/infra/mqtt"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// Publisher exports finished runs to an external consumer.
type Publisher interface {
	PublishRun(ctx context.Context, rec report.RunRecord, freights []model.Freight) error
	Close()
}

// Stages selects the optional passes executed after a simulation.
type Stages struct {
	LocalSearch bool
	Solver      bool
}

// Service wires scenario loading, simulation, optimization, persistence,
// metrics and result export.
type Service struct {
	cfg       *config.Config
	store     report.Store
	sink      coremetrics.MetricsSink
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level); err != nil {
		return nil, err
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := report.NewStore(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("report store: %w", err)
	}
	var pub Publisher
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewResultPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}
	return NewWithDeps(cfg, store, sink, pub), nil
}

// NewWithDeps creates a Service around already constructed collaborators.
// sink and pub may be nil.
func NewWithDeps(cfg *config.Config, store report.Store, sink coremetrics.MetricsSink, pub Publisher) *Service {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Service{cfg: cfg, store: store, sink: sink, publisher: pub, log: logger.New("service"), now: time.Now}
}

// LoadScenario reads path, or the configured input scenario when path is
// empty.
func (s *Service) LoadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		path = s.cfg.Input.Scenario
	}
	if path == "" {
		return nil, fmt.Errorf("no scenario given")
	}
	return scenario.Load(path)
}

// Run simulates sc with strategy, or the configured one when empty. The
// local search and solver passes run when enabled in the configuration.
func (s *Service) Run(ctx context.Context, sc *scenario.Scenario, strategy string) (*report.RunRecord, error) {
	return s.run(ctx, sc, strategy, Stages{LocalSearch: s.cfg.Optimizer.Enabled, Solver: s.cfg.Solver.Enabled})
}

// Optimize simulates sc and always runs the local search and solver
// passes on the resulting assignment.
func (s *Service) Optimize(ctx context.Context, sc *scenario.Scenario, strategy string) (*report.RunRecord, error) {
	return s.run(ctx, sc, strategy, Stages{LocalSearch: true, Solver: true})
}

// Compare runs sc once per strategy in parallel. Records are returned in
// the order of strategies; the configured list is used when empty.
func (s *Service) Compare(ctx context.Context, sc *scenario.Scenario, strategies []string) ([]*report.RunRecord, error) {
	if len(strategies) == 0 {
		strategies = s.cfg.Simulation.Strategies
	}
	stages := Stages{LocalSearch: s.cfg.Optimizer.Enabled, Solver: s.cfg.Solver.Enabled}
	recs := make([]*report.RunRecord, len(strategies))
	errs := make([]error, len(strategies))
	var wg sync.WaitGroup
	for i, name := range strategies {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			recs[i], errs[i] = s.run(ctx, sc, name, stages)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("%s: %w", name, errs[i])
			}
		}(i, name)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return recs, nil
}

// History returns the stored runs matching q.
func (s *Service) History(ctx context.Context, q report.RunQuery) ([]report.RunRecord, error) {
	return s.store.Query(ctx, q)
}

func (s *Service) run(ctx context.Context, sc *scenario.Scenario, strategy string, stages Stages) (*report.RunRecord, error) {
	if sc == nil {
		return nil, fmt.Errorf("nil scenario")
	}
	cfg := s.cfg.Simulation.Config
	if strategy != "" {
		cfg.Strategy = strategy
	}
	bus := eventbus.NewTyped[eventbus.Event](3*len(sc.Freights) + eventbus.DefaultBuffer)
	defer bus.Close()
	simulation, err := sim.New(cfg, logger.New("simulation"), bus)
	if err != nil {
		return nil, err
	}

	collectCtx, stopCollect := context.WithCancel(ctx)
	defer stopCollect()
	collected := metrics.StartEventCollector(collectCtx, bus, s.sink)

	out, err := simulation.Run(ctx, sim.Input{Freights: sc.Freights, Vehicles: sc.Vehicles})
	if err != nil {
		return nil, err
	}
	bus.Close()
	<-collected

	rec := &report.RunRecord{
		RunID:     out.RunID,
		Timestamp: s.now(),
		Scenario:  sc.Name,
		Strategy:  out.Strategy,
		Summary:   out.Summary,
		Freights:  out.Freights,
		Vehicles:  out.Vehicles,
	}
	if err := s.sink.RecordRun(out.Summary); err != nil {
		s.log.Warnf("record run %s: %v", out.RunID, err)
	}
	if stages.LocalSearch {
		if err := s.localSearch(ctx, rec, sc); err != nil {
			return nil, err
		}
	}
	if stages.Solver {
		if err := s.solve(ctx, rec, sc); err != nil {
			return nil, err
		}
	}

	if err := s.store.Append(ctx, *rec); err != nil {
		return nil, fmt.Errorf("store run %s: %w", rec.RunID, err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishRun(ctx, *rec, sc.Freights); err != nil {
			return nil, fmt.Errorf("publish run %s: %w", rec.RunID, err)
		}
	}
	s.log.Infof("run %s stored: strategy=%s assigned=%d/%d distance=%.2fkm",
		rec.RunID, rec.Strategy, rec.Summary.Assigned, rec.Summary.Freights, rec.Summary.TotalDistanceKm)
	return rec, nil
}

func (s *Service) localSearch(ctx context.Context, rec *report.RunRecord, sc *scenario.Scenario) error {
	ls := optimize.NewLocalSearch(s.cfg.Optimizer.Options(), logger.New("local_search"), nil)
	res, err := ls.Run(ctx, optimize.AssignmentFromResults(rec.Freights), sc.Freights, sc.Vehicles)
	if err != nil {
		return fmt.Errorf("local search: %w", err)
	}
	rec.LocalSearch = &report.LocalSearchRecord{
		InitialObjective: res.InitialObjective,
		Objective:        res.Objective,
		Iterations:       res.Iterations,
		ElapsedMs:        res.Elapsed.Milliseconds(),
		ImprovementPct:   res.ImprovementPct,
		Assignment:       res.Assignment,
	}
	if r, ok := s.sink.(coremetrics.LocalSearchRecorder); ok {
		if err := r.RecordLocalSearch(coremetrics.LocalSearchEvent{
			RunID:            rec.RunID,
			Strategy:         rec.Strategy,
			InitialObjective: res.InitialObjective,
			Objective:        res.Objective,
			Iterations:       res.Iterations,
			Elapsed:          res.Elapsed,
			ImprovementPct:   res.ImprovementPct,
			Time:             s.now(),
		}); err != nil {
			s.log.Warnf("record local search %s: %v", rec.RunID, err)
		}
	}
	return nil
}

func (s *Service) solve(ctx context.Context, rec *report.RunRecord, sc *scenario.Scenario) error {
	solver := optimize.NewLPSolver(logger.New("solver"))
	solver.MaxVariables = s.cfg.Solver.MaxVariables
	sol, err := solver.Solve(ctx, optimize.Problem{
		Freights:  sc.Freights,
		Vehicles:  sc.Vehicles,
		Matrix:    optimize.BuildDistanceMatrix(sc.Freights, sc.Vehicles),
		TimeLimit: s.cfg.Solver.TimeLimit(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("solver: %w", err)
		}
		s.log.Warnf("solver failed for run %s: %v", rec.RunID, err)
	}
	rec.Solver = &report.SolverRecord{
		Status:    string(sol.Status),
		Objective: report.Finite(sol.Objective),
		Bound:     report.Finite(sol.Bound),
		Gap:       report.Finite(sol.Gap),
		ElapsedMs: sol.Elapsed.Milliseconds(),
	}
	if r, ok := s.sink.(coremetrics.SolverRecorder); ok {
		if err := r.RecordSolver(coremetrics.SolverEvent{
			RunID:     rec.RunID,
			Status:    string(sol.Status),
			Objective: sol.Objective,
			Bound:     sol.Bound,
			Gap:       sol.Gap,
			Elapsed:   sol.Elapsed,
			Time:      s.now(),
		}); err != nil {
			s.log.Warnf("record solver %s: %v", rec.RunID, err)
		}
	}
	return nil
}

// Close flushes the metrics sinks and releases the store and publisher.
func (s *Service) Close() error {
	var errs []error
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		errs = append(errs, f.Flush())
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}
