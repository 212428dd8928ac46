package events

// AssignmentEvent is published when the dispatcher hands a freight to a vehicle.
type AssignmentEvent struct {
	RunID       string
	Strategy    string
	FreightID   string
	VehicleID   string
	Time        float64
	DistanceKm  float64
	AvailableAt float64
}

// UnassignedEvent is published when a freight cannot be dispatched.
type UnassignedEvent struct {
	RunID     string
	Strategy  string
	FreightID string
	Time      float64
	Reason    string
}

// TripCompletedEvent is published when a vehicle returns to base.
type TripCompletedEvent struct {
	RunID       string
	VehicleID   string
	FreightID   string
	Time        float64
	DistanceKm  float64
	BusySeconds float64
}

// ImprovementEvent is published for each move accepted by local search.
type ImprovementEvent struct {
	FreightID string
	From      string
	To        string
	Delta     float64
	Iteration int
}
