package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/freightsim/core/events"
	coremetrics "github.com/kilianp07/freightsim/core/metrics"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records assignment
// samples on sinks implementing AssignmentRecorder. It stops when the
// context is canceled or the bus is closed; the returned channel is closed
// once the collector has drained its subscription.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.AssignmentRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.AssignmentEvent:
					_ = rec.RecordAssignment(coremetrics.AssignmentSample{
						RunID:      e.RunID,
						Strategy:   e.Strategy,
						FreightID:  e.FreightID,
						VehicleID:  e.VehicleID,
						DistanceKm: e.DistanceKm,
						Success:    true,
						Time:       time.Now(),
					})
				case events.UnassignedEvent:
					_ = rec.RecordAssignment(coremetrics.AssignmentSample{
						RunID:     e.RunID,
						Strategy:  e.Strategy,
						FreightID: e.FreightID,
						Time:      time.Now(),
					})
				}
			}
		}
	}()
	return done
}
