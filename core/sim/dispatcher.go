package sim

import (
	"math"

	"github.com/kilianp07/freightsim/core/dispatch"
	"github.com/kilianp07/freightsim/core/events"
	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/scheduler"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// DispatcherProcess walks the ordered backlog and hands each freight to the
// vehicle chosen by the strategy.
type DispatcherProcess struct {
	strategy dispatch.Strategy
	table    *dispatch.RuntimeTable
	vehicles map[string]*VehicleProcess
	sched    *scheduler.Scheduler
	results  *Results
	log      logger.Logger
	bus      eventbus.EventBus
	runID    string
	horizon  float64

	backlog []model.Freight
	next    int
}

func newDispatcherProcess(s dispatch.Strategy, table *dispatch.RuntimeTable, vehicles map[string]*VehicleProcess,
	freights []model.Freight, horizon float64, sched *scheduler.Scheduler, results *Results, log logger.Logger, bus eventbus.EventBus, runID string) *DispatcherProcess {
	return &DispatcherProcess{
		strategy: s,
		table:    table,
		vehicles: vehicles,
		sched:    sched,
		results:  results,
		log:      logger.OrNop(log),
		bus:      bus,
		runID:    runID,
		horizon:  horizon,
		backlog:  s.OrderFreights(freights),
	}
}

// Remaining returns the number of freights not yet dispatched.
func (d *DispatcherProcess) Remaining() int { return len(d.backlog) - d.next }

// Resume implements scheduler.Process.
func (d *DispatcherProcess) Resume(now float64) {
	for d.next < len(d.backlog) {
		f := d.backlog[d.next]
		if now < f.PickupOffset {
			d.sched.At(f.PickupOffset, d)
			return
		}
		id, ok := d.strategy.SelectVehicle(d.table, f, now)
		if !ok {
			if at, found := d.nextAvailability(f, now); found {
				d.sched.At(at, d)
				return
			}
			d.next++
			d.fail(f, now, "no eligible vehicle")
			continue
		}
		d.next++
		if handedOff := d.assign(f, id, now); !handedOff {
			// the vehicle inbox is still full, resumed once it drains
			return
		}
	}
}

// nextAvailability returns the earliest time before the horizon at which a
// vehicle able to carry f becomes available.
func (d *DispatcherProcess) nextAvailability(f model.Freight, now float64) (float64, bool) {
	best, found := 0.0, false
	for _, info := range d.table.Snapshot() {
		if info.SpeedKmh <= 0 || info.Capacity < f.Weight {
			continue
		}
		if info.AvailableAt <= now || info.AvailableAt > d.horizon {
			continue
		}
		if !found || info.AvailableAt < best {
			best, found = info.AvailableAt, true
		}
	}
	return best, found
}

// assign returns false only when the handoff had to wait on the inbox.
func (d *DispatcherProcess) assign(f model.Freight, id string, now float64) bool {
	info, ok := d.table.Get(id)
	proc := d.vehicles[id]
	if !ok || proc == nil {
		d.log.Warnf("dispatcher: vehicle %s selected for freight %s has no process", id, f.ID)
		d.fail(f, now, "vehicle not found")
		return true
	}
	trip, err := model.PlanTrip(info.Location, info.Base, info.SpeedKmh, f)
	if err != nil {
		d.log.Warnf("dispatcher: plan trip for freight %s on %s: %v", f.ID, id, err)
		d.fail(f, now, err.Error())
		return true
	}
	arrival := now + trip.ToPickupS
	wait := math.Max(0, f.PickupOffset-arrival)
	completion := arrival + wait + trip.ToDeliveryS
	availableAt := now + wait + trip.Seconds()
	if err := d.table.Commit(id, availableAt, info.Base); err != nil {
		d.log.Errorf("dispatcher: %v", err)
		d.fail(f, now, err.Error())
		return true
	}
	d.results.RecordSuccess(model.FreightResult{
		FreightID:      f.ID,
		VehicleID:      id,
		PickupTarget:   f.PickupOffset,
		DeliveryTarget: f.DeliveryOffset,
		CompletionTime: completion,
		DistanceKm:     trip.DistanceKm(),
	})
	assignmentsTotal.WithLabelValues(d.strategy.Name()).Inc()
	d.log.Debugw("freight assigned", map[string]any{
		"freight_id":   f.ID,
		"vehicle_id":   id,
		"time":         now,
		"distance_km":  trip.DistanceKm(),
		"available_at": availableAt,
	})
	if d.bus != nil {
		d.bus.Publish(events.AssignmentEvent{
			RunID:       d.runID,
			Strategy:    d.strategy.Name(),
			FreightID:   f.ID,
			VehicleID:   id,
			Time:        now,
			DistanceKm:  trip.DistanceKm(),
			AvailableAt: availableAt,
		})
	}
	stored, err := proc.Inbox().Put(f, d)
	if err != nil {
		d.log.Errorf("dispatcher: hand freight %s to %s: %v", f.ID, id, err)
		return true
	}
	return stored
}

// abandon records every remaining freight as unassigned.
func (d *DispatcherProcess) abandon(now float64) {
	for ; d.next < len(d.backlog); d.next++ {
		d.fail(d.backlog[d.next], now, "horizon reached")
	}
}

func (d *DispatcherProcess) fail(f model.Freight, now float64, reason string) {
	d.results.RecordFailure(f)
	unassignedTotal.WithLabelValues(d.strategy.Name()).Inc()
	d.log.Debugw("freight unassigned", map[string]any{
		"freight_id": f.ID,
		"time":       now,
		"reason":     reason,
	})
	if d.bus != nil {
		d.bus.Publish(events.UnassignedEvent{
			RunID:     d.runID,
			Strategy:  d.strategy.Name(),
			FreightID: f.ID,
			Time:      now,
			Reason:    reason,
		})
	}
}
