package sim

import (
	"github.com/kilianp07/freightsim/core/events"
	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/logger"
	"github.com/kilianp07/freightsim/core/model"
	"github.com/kilianp07/freightsim/core/scheduler"
	"github.com/kilianp07/freightsim/internal/eventbus"
)

// Phase is the activity of a vehicle process.
type Phase int

const (
	Idle Phase = iota
	TravellingToPickup
	WaitingForPickupWindow
	TravellingToDelivery
	ReturningToBase
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case TravellingToPickup:
		return "travelling_to_pickup"
	case WaitingForPickupWindow:
		return "waiting_for_pickup_window"
	case TravellingToDelivery:
		return "travelling_to_delivery"
	case ReturningToBase:
		return "returning_to_base"
	default:
		return "unknown"
	}
}

// VehicleProcess drives one vehicle through its trips. It blocks on its
// inbox while idle and runs the pickup, delivery and return legs of every
// freight it receives.
type VehicleProcess struct {
	vehicle model.Vehicle
	base    geo.Coordinate
	sched   *scheduler.Scheduler
	inbox   *scheduler.Mailbox[model.Freight]
	results *Results
	log     logger.Logger
	bus     eventbus.EventBus
	runID   string

	phase   Phase
	state   model.VehicleState
	current model.Freight
	// leg in progress
	pendingTo geo.Coordinate
	legKm     float64
	legS      float64
	// totals of the trip in progress
	tripKm float64
	tripS  float64
}

func newVehicleProcess(v model.Vehicle, sched *scheduler.Scheduler, results *Results, log logger.Logger, bus eventbus.EventBus, runID string) *VehicleProcess {
	return &VehicleProcess{
		vehicle: v,
		base:    v.BaseOrStart(),
		sched:   sched,
		inbox:   scheduler.NewMailbox[model.Freight](sched),
		results: results,
		log:     logger.OrNop(log),
		bus:     bus,
		runID:   runID,
		state:   model.VehicleState{Location: v.Start},
	}
}

// Inbox is the capacity-1 mailbox the dispatcher hands freights to.
func (p *VehicleProcess) Inbox() *scheduler.Mailbox[model.Freight] { return p.inbox }

// Phase returns the current activity.
func (p *VehicleProcess) Phase() Phase { return p.phase }

// State returns a copy of the vehicle state.
func (p *VehicleProcess) State() model.VehicleState { return p.state }

// Resume implements scheduler.Process.
func (p *VehicleProcess) Resume(now float64) {
	switch p.phase {
	case Idle:
		p.takeNext(now)
	case TravellingToPickup:
		p.completeLeg(now)
		if now < p.current.PickupOffset {
			p.phase = WaitingForPickupWindow
			p.sched.At(p.current.PickupOffset, p)
			return
		}
		p.startLeg(TravellingToDelivery, p.current.Delivery)
	case WaitingForPickupWindow:
		p.startLeg(TravellingToDelivery, p.current.Delivery)
	case TravellingToDelivery:
		p.completeLeg(now)
		p.startLeg(ReturningToBase, p.base)
	case ReturningToBase:
		p.completeLeg(now)
		p.finishTrip(now)
		p.takeNext(now)
	}
}

func (p *VehicleProcess) takeNext(now float64) {
	p.phase = Idle
	f, ok := p.inbox.Get(p)
	if !ok {
		return
	}
	p.current = f
	p.tripKm, p.tripS = 0, 0
	p.log.Debugw("vehicle starts trip", map[string]any{
		"vehicle_id": p.vehicle.ID,
		"freight_id": f.ID,
		"time":       now,
	})
	p.startLeg(TravellingToPickup, f.Pickup)
}

func (p *VehicleProcess) startLeg(phase Phase, to geo.Coordinate) {
	km, s, err := geo.DistanceAndTime(p.state.Location, to, p.vehicle.SpeedKmh)
	if err != nil {
		p.log.Errorf("vehicle %s: leg to %v: %v", p.vehicle.ID, to, err)
		p.phase = Idle
		return
	}
	p.phase = phase
	p.legKm, p.legS = km, s
	p.pendingTo = to
	p.sched.After(s, p)
}

func (p *VehicleProcess) completeLeg(now float64) {
	p.state.Location = p.pendingTo
	p.state.DistanceKm += p.legKm
	p.state.BusySeconds += p.legS
	p.state.FreeAt = now
	p.tripKm += p.legKm
	p.tripS += p.legS
	p.legKm, p.legS = 0, 0
}

func (p *VehicleProcess) finishTrip(now float64) {
	p.results.AddTrip(p.vehicle.ID, p.tripKm, p.tripS)
	if p.bus != nil {
		p.bus.Publish(events.TripCompletedEvent{
			RunID:       p.runID,
			VehicleID:   p.vehicle.ID,
			FreightID:   p.current.ID,
			Time:        now,
			DistanceKm:  p.tripKm,
			BusySeconds: p.tripS,
		})
	}
	p.current = model.Freight{}
}
