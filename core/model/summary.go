package model

import "time"

// RunSummary condenses the outcome of one simulation run.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Strategy         string        `json:"strategy"`
	Freights         int           `json:"freights"`
	Assigned         int           `json:"assigned"`
	Unassigned       int           `json:"unassigned"`
	TotalDistanceKm  float64       `json:"total_distance_km"`
	TotalBusySeconds float64       `json:"total_busy_seconds"`
	MeanUtilization  float64       `json:"mean_utilization"`
	Horizon          float64       `json:"horizon"`
	Events           int           `json:"events"`
	WallTime         time.Duration `json:"wall_time"`
}

// SuccessRate returns the assigned fraction of freights, 0 for an empty run.
func (s RunSummary) SuccessRate() float64 {
	if s.Freights == 0 {
		return 0
	}
	return float64(s.Assigned) / float64(s.Freights)
}
