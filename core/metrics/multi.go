package metrics

import (
	"errors"

	"github.com/kilianp07/freightsim/core/model"
)

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the summary to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(s model.RunSummary) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordRun(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordAssignment forwards to sinks implementing AssignmentRecorder.
func (m *MultiSink) RecordAssignment(s AssignmentSample) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(AssignmentRecorder); ok {
			if err := rec.RecordAssignment(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordLocalSearch forwards to sinks implementing LocalSearchRecorder.
func (m *MultiSink) RecordLocalSearch(ev LocalSearchEvent) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(LocalSearchRecorder); ok {
			if err := rec.RecordLocalSearch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolver forwards to sinks implementing SolverRecorder.
func (m *MultiSink) RecordSolver(ev SolverEvent) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(SolverRecorder); ok {
			if err := rec.RecordSolver(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every sink and joins their errors.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, sink := range m.Sinks {
		if f, ok := sink.(Flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}
