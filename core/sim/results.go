package sim

import (
	"sync"

	"github.com/kilianp07/freightsim/core/model"
)

// Results collects the freight outcomes and vehicle aggregates of one run.
type Results struct {
	mu       sync.Mutex
	freights []model.FreightResult
	order    []string
	vehicles map[string]*model.VehicleAggregate
}

// NewResults creates a collector with a zeroed aggregate per vehicle.
func NewResults(vehicles []model.Vehicle) *Results {
	r := &Results{vehicles: make(map[string]*model.VehicleAggregate, len(vehicles))}
	for _, v := range vehicles {
		r.ensure(v.ID)
	}
	return r
}

func (r *Results) ensure(id string) *model.VehicleAggregate {
	agg, ok := r.vehicles[id]
	if !ok {
		agg = &model.VehicleAggregate{VehicleID: id}
		r.vehicles[id] = agg
		r.order = append(r.order, id)
	}
	return agg
}

// RecordSuccess appends a successful result and counts the freight for its vehicle.
func (r *Results) RecordSuccess(res model.FreightResult) {
	res.Success = true
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freights = append(r.freights, res)
	r.ensure(res.VehicleID).FreightsHandled++
}

// RecordFailure appends the unassigned result for f.
func (r *Results) RecordFailure(f model.Freight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freights = append(r.freights, model.UnassignedResult(f))
}

// AddTrip adds a completed trip to the vehicle's running totals.
func (r *Results) AddTrip(vehicleID string, distanceKm, busySeconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg := r.ensure(vehicleID)
	agg.DistanceKm += distanceKm
	agg.BusySeconds += busySeconds
}

// Finalize computes utilization against the run horizon.
func (r *Results) Finalize(horizon float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, agg := range r.vehicles {
		if horizon > 0 {
			agg.Utilization = agg.BusySeconds / horizon
		} else {
			agg.Utilization = 0
		}
	}
}

// Freights returns a copy of the freight results in recording order.
func (r *Results) Freights() []model.FreightResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.FreightResult, len(r.freights))
	copy(out, r.freights)
	return out
}

// Vehicles returns a copy of the aggregates in vehicle input order.
func (r *Results) Vehicles() []model.VehicleAggregate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.VehicleAggregate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.vehicles[id])
	}
	return out
}

// Summary condenses the collected results.
func (r *Results) Summary() model.RunSummary {
	var s model.RunSummary
	for _, fr := range r.Freights() {
		s.Freights++
		if fr.Success {
			s.Assigned++
			s.TotalDistanceKm += fr.DistanceKm
		} else {
			s.Unassigned++
		}
	}
	vehicles := r.Vehicles()
	for _, v := range vehicles {
		s.TotalBusySeconds += v.BusySeconds
		s.MeanUtilization += v.Utilization
	}
	if len(vehicles) > 0 {
		s.MeanUtilization /= float64(len(vehicles))
	}
	return s
}
