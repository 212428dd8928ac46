// Package metrics defines the sinks recording simulation outcomes.
//
// Every sink implements MetricsSink. Optional interfaces such as
// LocalSearchRecorder or SolverRecorder are detected with type assertions.
// NewMetricsSink builds sinks from configuration and combines several of
// them in a MultiSink.
package metrics
