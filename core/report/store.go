package report

import (
	"context"
	"math"
	"time"

	"github.com/kilianp07/freightsim/core/model"
)

// RunRecord is the persisted outcome of one simulation run.
type RunRecord struct {
	RunID       string                   `json:"run_id"`
	Timestamp   time.Time                `json:"timestamp"`
	Scenario    string                   `json:"scenario,omitempty"`
	Strategy    string                   `json:"strategy"`
	Summary     model.RunSummary         `json:"summary"`
	Freights    []model.FreightResult    `json:"freights"`
	Vehicles    []model.VehicleAggregate `json:"vehicles"`
	LocalSearch *LocalSearchRecord       `json:"local_search,omitempty"`
	Solver      *SolverRecord            `json:"solver,omitempty"`
}

// LocalSearchRecord summarizes a local search pass over the run's assignment.
type LocalSearchRecord struct {
	InitialObjective float64          `json:"initial_objective"`
	Objective        float64          `json:"objective"`
	Iterations       int              `json:"iterations"`
	ElapsedMs        int64            `json:"elapsed_ms"`
	ImprovementPct   float64          `json:"improvement_pct"`
	Assignment       model.Assignment `json:"assignment"`
}

// SolverRecord summarizes an exact solver call. Objective, Bound and Gap are
// nil when the solver produced no finite value.
type SolverRecord struct {
	Status    string   `json:"status"`
	Objective *float64 `json:"objective,omitempty"`
	Bound     *float64 `json:"bound,omitempty"`
	Gap       *float64 `json:"gap,omitempty"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// Finite returns a pointer to v, or nil when v is infinite or NaN.
func Finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// RunQuery defines filters for retrieving records. Zero fields match anything.
type RunQuery struct {
	Start    time.Time
	End      time.Time
	RunID    string
	Strategy string
	Scenario string
}

// Match reports whether r satisfies q.
func (q RunQuery) Match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	if q.Scenario != "" && r.Scenario != q.Scenario {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}
