package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/model"
)

// PromSink records simulation outcomes in Prometheus metrics. When a
// textfile path is set, Flush writes the gathered metrics there for the
// node exporter textfile collector.
type PromSink struct {
	runs        *prometheus.CounterVec
	successRate *prometheus.GaugeVec
	distance    *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	legs        *prometheus.HistogramVec
	improvement *prometheus.HistogramVec
	solverGap   prometheus.Gauge
	solverRuns  *prometheus.CounterVec

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers metrics on the default Prometheus registry.
func NewPromSink(textfile string) (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, textfile)
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	s := &PromSink{gatherer: g, textfile: textfile}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freightsim_runs_total",
		Help: "Total number of simulation runs",
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.successRate, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "freightsim_success_rate",
		Help: "Fraction of freights assigned in the last run",
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.distance, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "freightsim_total_distance_km",
		Help: "Total route distance of the last run",
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "freightsim_mean_utilization",
		Help: "Mean vehicle utilization of the last run",
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.legs, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freightsim_assignment_distance_km",
		Help:    "Route distance of assigned freights",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.improvement, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freightsim_local_search_improvement_pct",
		Help:    "Objective improvement obtained by local search",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	}, []string{"strategy"})); err != nil {
		return nil, err
	}
	if s.solverGap, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "freightsim_solver_gap",
		Help: "Optimality gap reported by the last solver call",
	})); err != nil {
		return nil, err
	}
	if s.solverRuns, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freightsim_solver_runs_total",
		Help: "Solver calls by termination status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordRun updates the run gauges for the strategy.
func (s *PromSink) RecordRun(sum model.RunSummary) error {
	s.runs.WithLabelValues(sum.Strategy).Inc()
	s.successRate.WithLabelValues(sum.Strategy).Set(sum.SuccessRate())
	s.distance.WithLabelValues(sum.Strategy).Set(sum.TotalDistanceKm)
	s.utilization.WithLabelValues(sum.Strategy).Set(sum.MeanUtilization)
	return nil
}

// RecordAssignment observes the route distance of successful assignments.
func (s *PromSink) RecordAssignment(a coremetrics.AssignmentSample) error {
	if a.Success {
		s.legs.WithLabelValues(a.Strategy).Observe(a.DistanceKm)
	}
	return nil
}

// RecordLocalSearch observes the improvement percentage.
func (s *PromSink) RecordLocalSearch(ev coremetrics.LocalSearchEvent) error {
	s.improvement.WithLabelValues(ev.Strategy).Observe(ev.ImprovementPct)
	return nil
}

// RecordSolver counts the call and keeps the last finite gap.
func (s *PromSink) RecordSolver(ev coremetrics.SolverEvent) error {
	s.solverRuns.WithLabelValues(ev.Status).Inc()
	if finite(ev.Gap) {
		s.solverGap.Set(ev.Gap)
	}
	return nil
}

// Flush writes the textfile when configured.
func (s *PromSink) Flush() error {
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
