package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/sim"
	"github.com/kilianp07/freightsim/infra/metrics"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// RunCase simulates c once per expected strategy and fails t on any
// mismatch.
func RunCase(t *testing.T, c *Case) {
	t.Helper()
	for strategy, want := range c.Expected {
		t.Run(strategy, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			sink, err := metrics.NewPromSinkWithRegistry(reg, reg, "")
			if err != nil {
				t.Fatalf("prom sink: %v", err)
			}
			bus := eventbus.New()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			collected := metrics.StartEventCollector(ctx, bus, sink)

			s, err := sim.New(sim.Config{Strategy: strategy}, logger.NopLogger{}, bus)
			if err != nil {
				t.Fatalf("simulation: %v", err)
			}
			out, err := s.Run(ctx, sim.Input{Freights: c.Scenario.Freights, Vehicles: c.Scenario.Vehicles})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			bus.Close()
			<-collected
			if err := sink.RecordRun(out.Summary); err != nil {
				t.Fatalf("record run: %v", err)
			}

			if out.Summary.Assigned != want.Assigned {
				t.Errorf("assigned = %d, want %d", out.Summary.Assigned, want.Assigned)
			}
			if out.Summary.Unassigned != want.Unassigned {
				t.Errorf("unassigned = %d, want %d", out.Summary.Unassigned, want.Unassigned)
			}
			got := make(map[string]string, len(out.Freights))
			for _, r := range out.Freights {
				got[r.FreightID] = r.VehicleID
			}
			for fid, vid := range want.Vehicles {
				if got[fid] != vid {
					t.Errorf("freight %s carried by %s, want %s", fid, got[fid], vid)
				}
			}
			if n := testutil.CollectAndCount(reg, "freightsim_assignment_distance_km"); n != 1 {
				t.Errorf("assignment histogram series = %d, want 1", n)
			}
		})
	}
}
