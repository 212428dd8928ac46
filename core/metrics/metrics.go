package metrics

import (
	"time"

	"github.com/kilianp07/freightsim/core/model"
)

// MetricsSink records the summary of simulation runs.
type MetricsSink interface {
	RecordRun(s model.RunSummary) error
}

// AssignmentSample is a single dispatch decision.
type AssignmentSample struct {
	RunID      string
	Strategy   string
	FreightID  string
	VehicleID  string
	DistanceKm float64
	Success    bool
	Time       time.Time
}

// AssignmentRecorder records individual dispatch decisions.
type AssignmentRecorder interface {
	RecordAssignment(s AssignmentSample) error
}

// LocalSearchEvent summarizes a local search pass.
type LocalSearchEvent struct {
	RunID            string
	Strategy         string
	InitialObjective float64
	Objective        float64
	Iterations       int
	Elapsed          time.Duration
	ImprovementPct   float64
	Time             time.Time
}

// LocalSearchRecorder records local search passes.
type LocalSearchRecorder interface {
	RecordLocalSearch(ev LocalSearchEvent) error
}

// SolverEvent summarizes an exact solver call. Objective and Gap are +Inf
// when the solver found no assignment.
type SolverEvent struct {
	RunID     string
	Status    string
	Objective float64
	Bound     float64
	Gap       float64
	Elapsed   time.Duration
	Time      time.Time
}

// SolverRecorder records exact solver calls.
type SolverRecorder interface {
	RecordSolver(ev SolverEvent) error
}

// Flusher is implemented by sinks buffering data until the end of a command.
type Flusher interface {
	Flush() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(model.RunSummary) error         { return nil }
func (NopSink) RecordAssignment(AssignmentSample) error  { return nil }
func (NopSink) RecordLocalSearch(LocalSearchEvent) error { return nil }
func (NopSink) RecordSolver(SolverEvent) error           { return nil }
func (NopSink) Flush() error                             { return nil }
