package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/freightsim/config"
	"github.com/kilianp07/freightsim/core/geo"
	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/report"
	"github.com/kilianp07/freightsim/core/scenario"
)

type recordingSink struct {
	mu          sync.Mutex
	runs        []model.RunSummary
	assignments []coremetrics.AssignmentSample
	searches    []coremetrics.LocalSearchEvent
	solves      []coremetrics.SolverEvent
	flushed     bool
}

func (s *recordingSink) RecordRun(sum model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, sum)
	return nil
}

func (s *recordingSink) RecordAssignment(a coremetrics.AssignmentSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, a)
	return nil
}

func (s *recordingSink) RecordLocalSearch(ev coremetrics.LocalSearchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, ev)
	return nil
}

func (s *recordingSink) RecordSolver(ev coremetrics.SolverEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solves = append(s.solves, ev)
	return nil
}

func (s *recordingSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	runs   []string
	err    error
	closed bool
}

func (p *fakePublisher) PublishRun(_ context.Context, rec report.RunRecord, _ []model.Freight) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = append(p.runs, rec.RunID)
	return p.err
}

func (p *fakePublisher) Close() { p.closed = true }

func testScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name: "paris",
		Vehicles: []model.Vehicle{
			{ID: "v1", Start: geo.Coordinate{Lat: 48.85, Lon: 2.35}, Capacity: 100, SpeedKmh: 50},
			{ID: "v2", Start: geo.Coordinate{Lat: 48.80, Lon: 2.30}, Capacity: 200, SpeedKmh: 70},
		},
		Freights: []model.Freight{
			{ID: "f1", Weight: 40, Pickup: geo.Coordinate{Lat: 48.86, Lon: 2.36}, Delivery: geo.Coordinate{Lat: 48.88, Lon: 2.30}, DeliveryOffset: 3600},
			{ID: "f2", Weight: 150, Pickup: geo.Coordinate{Lat: 48.82, Lon: 2.33}, Delivery: geo.Coordinate{Lat: 48.84, Lon: 2.40}, PickupOffset: 120, DeliveryOffset: 4000},
			{ID: "f3", Weight: 20, Pickup: geo.Coordinate{Lat: 48.81, Lon: 2.31}, Delivery: geo.Coordinate{Lat: 48.85, Lon: 2.34}, PickupOffset: 300, DeliveryOffset: 4200},
			{ID: "f4", Weight: 500, Pickup: geo.Coordinate{Lat: 48.81, Lon: 2.31}, Delivery: geo.Coordinate{Lat: 48.85, Lon: 2.34}, PickupOffset: 300, DeliveryOffset: 4200},
		},
	}
}

func newTestService(t *testing.T, mutate func(*config.Config)) (*Service, *recordingSink, *fakePublisher) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Output.Path = filepath.Join(t.TempDir(), "runs.jsonl")
	if mutate != nil {
		mutate(cfg)
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	store, err := report.NewStore(cfg.Output)
	require.NoError(t, err)
	sink := &recordingSink{}
	pub := &fakePublisher{}
	svc := NewWithDeps(cfg, store, sink, pub)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, sink, pub
}

func TestServiceRun(t *testing.T) {
	svc, sink, pub := newTestService(t, nil)
	rec, err := svc.Run(context.Background(), testScenario(), "")
	require.NoError(t, err)

	assert.Equal(t, "fcfs", rec.Strategy)
	assert.Equal(t, "paris", rec.Scenario)
	assert.Equal(t, 3, rec.Summary.Assigned)
	assert.Equal(t, 1, rec.Summary.Unassigned)
	assert.Nil(t, rec.LocalSearch)
	assert.Nil(t, rec.Solver)

	require.Len(t, sink.runs, 1)
	assert.Len(t, sink.assignments, 4)
	assert.Empty(t, sink.searches)
	assert.Equal(t, []string{rec.RunID}, pub.runs)

	stored, err := svc.History(context.Background(), report.RunQuery{RunID: rec.RunID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.Summary.TotalDistanceKm, stored[0].Summary.TotalDistanceKm)
}

func TestServiceRunUnknownStrategy(t *testing.T) {
	svc, _, pub := newTestService(t, nil)
	_, err := svc.Run(context.Background(), testScenario(), "random")
	require.Error(t, err)
	assert.Empty(t, pub.runs)
}

func TestServiceOptimize(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)
	rec, err := svc.Optimize(context.Background(), testScenario(), "cost")
	require.NoError(t, err)

	require.NotNil(t, rec.LocalSearch)
	assert.LessOrEqual(t, rec.LocalSearch.Objective, rec.LocalSearch.InitialObjective+1e-9)
	assert.Len(t, rec.LocalSearch.Assignment, 3)
	require.NotNil(t, rec.Solver)
	assert.NotEmpty(t, rec.Solver.Status)
	assert.Len(t, sink.searches, 1)
	assert.Len(t, sink.solves, 1)
}

func TestServiceRunWithEnabledStages(t *testing.T) {
	svc, _, _ := newTestService(t, func(c *config.Config) {
		c.Optimizer.Enabled = true
		c.Optimizer.TimeLimitMS = 1000
	})
	rec, err := svc.Run(context.Background(), testScenario(), "distance")
	require.NoError(t, err)
	assert.NotNil(t, rec.LocalSearch)
	assert.Nil(t, rec.Solver)
}

func TestServiceCompare(t *testing.T) {
	svc, sink, _ := newTestService(t, nil)
	recs, err := svc.Compare(context.Background(), testScenario(), nil)
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, name := range []string{"fcfs", "cost", "distance", "overall_cost"} {
		assert.Equal(t, name, recs[i].Strategy)
		assert.Equal(t, 4, recs[i].Summary.Freights)
	}
	assert.Len(t, sink.runs, 4)

	stored, err := svc.History(context.Background(), report.RunQuery{Scenario: "paris"})
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestServiceCompareReportsFailingStrategy(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.Compare(context.Background(), testScenario(), []string{"fcfs", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestServicePublishError(t *testing.T) {
	svc, _, pub := newTestService(t, nil)
	pub.err = errors.New("broker down")
	_, err := svc.Run(context.Background(), testScenario(), "")
	require.Error(t, err)
}

func TestServiceCancelled(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Run(ctx, testScenario(), "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestServiceLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	data := `vehicles:
  - id: v1
    start: {lat: 48.85, lon: 2.35}
    capacity: 100
    speed_kmh: 50
freights:
  - id: f1
    weight: 10
    pickup: {lat: 48.86, lon: 2.36}
    delivery: {lat: 48.88, lon: 2.30}
    delivery_offset: 3600
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	svc, _, _ := newTestService(t, func(c *config.Config) { c.Input.Scenario = path })

	sc, err := svc.LoadScenario("")
	require.NoError(t, err)
	assert.Len(t, sc.Vehicles, 1)
	assert.Len(t, sc.Freights, 1)
}

func TestServiceLoadScenarioMissing(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.LoadScenario("")
	assert.Error(t, err)
}

func TestServiceClose(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Path = filepath.Join(t.TempDir(), "runs.jsonl")
	cfg.SetDefaults()
	store, err := report.NewStore(cfg.Output)
	require.NoError(t, err)
	sink := &recordingSink{}
	pub := &fakePublisher{}
	svc := NewWithDeps(cfg, store, sink, pub)
	svc.now = func() time.Time { return time.Unix(0, 0) }
	require.NoError(t, svc.Close())
	assert.True(t, sink.flushed)
	assert.True(t, pub.closed)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Output.Path = filepath.Join(t.TempDir(), "runs.db")
	cfg.Output.Backend = report.BackendSQLite
	cfg.SetDefaults()
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}
