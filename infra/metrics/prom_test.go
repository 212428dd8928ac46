package metrics

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/freightsim/core/events"
	"github.com/kilianp07/freightsim/core/factory"
	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

func TestPromSinkRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(model.RunSummary{Strategy: "cost", Freights: 4, Assigned: 3, TotalDistanceKm: 42, MeanUtilization: 0.5}))
	require.NoError(t, sink.RecordRun(model.RunSummary{Strategy: "cost", Freights: 2, Assigned: 2, TotalDistanceKm: 10}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.runs.WithLabelValues("cost")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.successRate.WithLabelValues("cost")))
	assert.Equal(t, 10.0, testutil.ToFloat64(sink.distance.WithLabelValues("cost")))

	require.NoError(t, sink.RecordSolver(coremetrics.SolverEvent{Status: "optimal", Gap: 0.1}))
	require.NoError(t, sink.RecordSolver(coremetrics.SolverEvent{Status: "infeasible", Gap: math.Inf(1)}))
	assert.Equal(t, 0.1, testutil.ToFloat64(sink.solverGap))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solverRuns.WithLabelValues("infeasible")))

	require.NoError(t, sink.RecordLocalSearch(coremetrics.LocalSearchEvent{Strategy: "cost", ImprovementPct: 12}))
	require.NoError(t, sink.RecordAssignment(coremetrics.AssignmentSample{Strategy: "cost", Success: true, DistanceKm: 3}))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.improvement)+testutil.CollectAndCount(sink.legs))
}

func TestPromSinkReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg, reg, "")
	require.NoError(t, err)
	require.NoError(t, second.RecordRun(model.RunSummary{Strategy: "fcfs"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.runs.WithLabelValues("fcfs")))
}

func TestPromSinkTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := filepath.Join(t.TempDir(), "freightsim.prom")
	sink, err := NewPromSinkWithRegistry(reg, reg, path)
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(model.RunSummary{Strategy: "distance", Freights: 1, Assigned: 1}))
	require.NoError(t, sink.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `freightsim_runs_total{strategy="distance"} 1`))
}

func TestFactoryBuiltins(t *testing.T) {
	names := coremetrics.SinkNames()
	assert.Contains(t, names, "nop")
	assert.Contains(t, names, "prometheus")
	assert.Contains(t, names, "influx")

	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"textfile": ""}}})
	require.NoError(t, err)
	_, ok := s.(*PromSink)
	assert.True(t, ok)
}

type assignmentSink struct {
	coremetrics.NopSink
	samples chan coremetrics.AssignmentSample
}

func (a *assignmentSink) RecordAssignment(s coremetrics.AssignmentSample) error {
	a.samples <- s
	return nil
}

func TestEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &assignmentSink{samples: make(chan coremetrics.AssignmentSample, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(events.TripCompletedEvent{})
	bus.Publish(events.AssignmentEvent{RunID: "r", FreightID: "f1", VehicleID: "v1", DistanceKm: 4})
	bus.Publish(events.UnassignedEvent{RunID: "r", FreightID: "f2"})

	got := <-sink.samples
	assert.Equal(t, "f1", got.FreightID)
	assert.True(t, got.Success)
	got = <-sink.samples
	assert.Equal(t, "f2", got.FreightID)
	assert.False(t, got.Success)

	bus.Close()
	<-done
}

type runOnlySink struct{}

func (runOnlySink) RecordRun(model.RunSummary) error { return nil }

func TestEventCollectorWithoutRecorder(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New(), runOnlySink{})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector should return immediately")
	}
}
