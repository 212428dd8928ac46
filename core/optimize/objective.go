package optimize

import (
	"github.com/kilianp07/freightsim/core/geo"
	"github.com/kilianp07/freightsim/core/model"
)

// RoundTrip is the distance of carrying f with v in isolation.
func RoundTrip(v model.Vehicle, f model.Freight) float64 {
	return geo.Haversine(v.Start, f.Pickup) + geo.Haversine(f.Pickup, f.Delivery) + geo.Haversine(f.Delivery, v.BaseOrStart())
}

// DistanceMatrix holds the round trip distance of every vehicle/freight pair.
// Km[i][j] belongs to VehicleIDs[i] and FreightIDs[j].
type DistanceMatrix struct {
	VehicleIDs []string
	FreightIDs []string
	Km         [][]float64
}

func (m DistanceMatrix) fits(vehicles, freights int) bool {
	if len(m.Km) != vehicles {
		return false
	}
	for _, row := range m.Km {
		if len(row) != freights {
			return false
		}
	}
	return true
}

// BuildDistanceMatrix computes the round trip of every pair, in input order.
func BuildDistanceMatrix(freights []model.Freight, vehicles []model.Vehicle) DistanceMatrix {
	m := DistanceMatrix{
		VehicleIDs: make([]string, len(vehicles)),
		FreightIDs: make([]string, len(freights)),
		Km:         make([][]float64, len(vehicles)),
	}
	for j, f := range freights {
		m.FreightIDs[j] = f.ID
	}
	for i, v := range vehicles {
		m.VehicleIDs[i] = v.ID
		row := make([]float64, len(freights))
		for j, f := range freights {
			row[j] = RoundTrip(v, f)
		}
		m.Km[i] = row
	}
	return m
}

// Objective returns the total round trip distance of a. Pairs referencing
// unknown freights or vehicles are ignored.
func Objective(a model.Assignment, freights []model.Freight, vehicles []model.Vehicle) float64 {
	fs := make(map[string]model.Freight, len(freights))
	for _, f := range freights {
		fs[f.ID] = f
	}
	vs := make(map[string]model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vs[v.ID] = v
	}
	var total float64
	for _, f := range freights {
		vid, ok := a[f.ID]
		if !ok {
			continue
		}
		v, ok := vs[vid]
		if !ok {
			continue
		}
		total += RoundTrip(v, fs[f.ID])
	}
	return total
}

// Loads returns the summed freight weight per vehicle under a.
func Loads(a model.Assignment, freights []model.Freight) map[string]float64 {
	loads := make(map[string]float64)
	for _, f := range freights {
		if vid, ok := a[f.ID]; ok {
			loads[vid] += f.Weight
		}
	}
	return loads
}

// AssignmentFromResults extracts the successful freight/vehicle pairs.
func AssignmentFromResults(results []model.FreightResult) model.Assignment {
	a := make(model.Assignment, len(results))
	for _, r := range results {
		if r.Success && r.VehicleID != "" && r.VehicleID != model.Unassigned {
			a[r.FreightID] = r.VehicleID
		}
	}
	return a
}
