package model

// Unassigned is the vehicle id reported for freights no vehicle could take.
const Unassigned = "unassigned"

// NoCompletion is the completion time reported for unassigned freights.
const NoCompletion = -1.0

// FreightResult is the outcome of dispatching a single freight.
type FreightResult struct {
	FreightID      string  `json:"freight_id"`
	VehicleID      string  `json:"vehicle_id"`
	PickupTarget   float64 `json:"pickup_target"`
	DeliveryTarget float64 `json:"delivery_target"`
	CompletionTime float64 `json:"completion_time"`
	DistanceKm     float64 `json:"distance_km"`
	Success        bool    `json:"success"`
}

// UnassignedResult builds the failure record for f.
func UnassignedResult(f Freight) FreightResult {
	return FreightResult{
		FreightID:      f.ID,
		VehicleID:      Unassigned,
		PickupTarget:   f.PickupOffset,
		DeliveryTarget: f.DeliveryOffset,
		CompletionTime: NoCompletion,
	}
}

// VehicleAggregate rolls up a vehicle's activity over a run.
type VehicleAggregate struct {
	VehicleID       string  `json:"vehicle_id"`
	DistanceKm      float64 `json:"distance_km"`
	BusySeconds     float64 `json:"busy_seconds"`
	FreightsHandled int     `json:"freights_handled"`
	Utilization     float64 `json:"utilization"`
}

// Assignment maps freight ids to vehicle ids.
type Assignment map[string]string

// Clone returns an independent copy of a.
func (a Assignment) Clone() Assignment {
	cp := make(Assignment, len(a))
	for k, v := range a {
		cp[k] = v
	}
	return cp
}
