package sim

import "github.com/prometheus/client_golang/prometheus"

var (
	assignmentsTotal *prometheus.CounterVec
	unassignedTotal  *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	assigned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightsim_assignments_total",
			Help: "Number of freights assigned to a vehicle",
		},
		[]string{"strategy"},
	)
	unassigned := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightsim_unassigned_total",
			Help: "Number of freights no vehicle could take",
		},
		[]string{"strategy"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freightsim_run_duration_seconds",
			Help:    "Wall-clock duration of simulation runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	return assigned, unassigned, dur
}

func init() {
	assignmentsTotal, unassignedTotal, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers simulation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assignmentsTotal, unassignedTotal, runDuration)
}

// ResetMetrics reinitializes the collectors for tests and registers them on
// reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	assignmentsTotal, unassignedTotal, runDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
