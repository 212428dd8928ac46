package dispatch

import (
	"math"
	"sort"

	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/model"
)

// Strategy decides the freight processing order and the vehicle for each freight.
type Strategy interface {
	Name() string
	// OrderFreights returns the backlog in processing order. The input is
	// not modified.
	OrderFreights(freights []model.Freight) []model.Freight
	// SelectVehicle returns the id of the chosen vehicle or false when no
	// vehicle is eligible.
	SelectVehicle(table *RuntimeTable, f model.Freight, now float64) (string, bool)
}

// byPickupTime sorts by ascending pickup offset, keeping input order on ties.
func byPickupTime(freights []model.Freight) []model.Freight {
	out := make([]model.Freight, len(freights))
	copy(out, freights)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PickupOffset < out[j].PickupOffset })
	return out
}

// selectMin returns the eligible vehicle with the smallest key. The first
// vehicle wins on equal keys.
func selectMin(table *RuntimeTable, f model.Freight, now float64, key func(model.VehicleRuntimeInfo) float64) (string, bool) {
	best := ""
	bestKey := math.Inf(1)
	found := false
	for _, info := range table.Eligible(f, now) {
		k := key(info)
		if !found || k < bestKey {
			best, bestKey, found = info.ID, k, true
		}
	}
	return best, found
}

// FCFS picks the first eligible vehicle.
type FCFS struct{}

func (FCFS) Name() string { return "fcfs" }

func (FCFS) OrderFreights(freights []model.Freight) []model.Freight { return byPickupTime(freights) }

func (FCFS) SelectVehicle(table *RuntimeTable, f model.Freight, now float64) (string, bool) {
	eligible := table.Eligible(f, now)
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[0].ID, true
}

// Cost picks the vehicle closest to the pickup location.
type Cost struct{}

func (Cost) Name() string { return "cost" }

func (Cost) OrderFreights(freights []model.Freight) []model.Freight { return byPickupTime(freights) }

func (Cost) SelectVehicle(table *RuntimeTable, f model.Freight, now float64) (string, bool) {
	return selectMin(table, f, now, func(info model.VehicleRuntimeInfo) float64 {
		return geo.Haversine(info.Location, f.Pickup)
	})
}

// Distance picks the vehicle with the shortest total route.
type Distance struct{}

func (Distance) Name() string { return "distance" }

func (Distance) OrderFreights(freights []model.Freight) []model.Freight { return byPickupTime(freights) }

func (Distance) SelectVehicle(table *RuntimeTable, f model.Freight, now float64) (string, bool) {
	return selectMin(table, f, now, func(info model.VehicleRuntimeInfo) float64 {
		return model.RouteDistance(info.Location, info.Base, f)
	})
}

// OverallCost picks the vehicle with the shortest total route time.
type OverallCost struct{}

func (OverallCost) Name() string { return "overall_cost" }

func (OverallCost) OrderFreights(freights []model.Freight) []model.Freight {
	return byPickupTime(freights)
}

func (OverallCost) SelectVehicle(table *RuntimeTable, f model.Freight, now float64) (string, bool) {
	return selectMin(table, f, now, func(info model.VehicleRuntimeInfo) float64 {
		return model.RouteDistance(info.Location, info.Base, f) / info.SpeedKmh
	})
}
