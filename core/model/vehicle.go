package model

import (
	"fmt"

	"github.com/kilianp07/freightsim/core/geo"
)

// Vehicle is the static profile of a fleet member.
type Vehicle struct {
	ID       string          `json:"id" yaml:"id"`
	Start    geo.Coordinate  `json:"start" yaml:"start"`
	Base     *geo.Coordinate `json:"base,omitempty" yaml:"base,omitempty"` // defaults to Start
	Capacity float64         `json:"capacity" yaml:"capacity"`
	SpeedKmh float64         `json:"speed_kmh" yaml:"speed_kmh"`
}

// BaseOrStart returns the base location, falling back to the start location.
func (v Vehicle) BaseOrStart() geo.Coordinate {
	if v.Base != nil {
		return *v.Base
	}
	return v.Start
}

// Validate checks that the vehicle profile is usable.
// In particular SpeedKmh must be positive.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.SpeedKmh <= 0 {
		return fmt.Errorf("vehicle %s: %w", v.ID, geo.ErrInvalidSpeed)
	}
	if v.Capacity < 0 {
		return fmt.Errorf("vehicle %s: capacity must not be negative", v.ID)
	}
	return nil
}

// CanCarry returns true if the freight fits the vehicle capacity.
func (v Vehicle) CanCarry(f Freight) bool {
	return f.Weight <= v.Capacity
}

// VehicleState is the mutable runtime state of a vehicle. It is owned by the
// vehicle's process.
type VehicleState struct {
	Location    geo.Coordinate
	FreeAt      float64
	DistanceKm  float64
	BusySeconds float64
}

// VehicleRuntimeInfo is the dispatcher's view of a vehicle. The dispatcher
// updates it optimistically when it assigns a freight.
type VehicleRuntimeInfo struct {
	ID          string
	Capacity    float64
	SpeedKmh    float64
	Location    geo.Coordinate
	AvailableAt float64
	Base        geo.Coordinate
}

// NewRuntimeInfo builds the initial dispatcher view of v.
func NewRuntimeInfo(v Vehicle) VehicleRuntimeInfo {
	return VehicleRuntimeInfo{
		ID:       v.ID,
		Capacity: v.Capacity,
		SpeedKmh: v.SpeedKmh,
		Location: v.Start,
		Base:     v.BaseOrStart(),
	}
}

// Eligible reports whether the vehicle can take f at time now.
func (r VehicleRuntimeInfo) Eligible(f Freight, now float64) bool {
	return r.Capacity >= f.Weight && r.AvailableAt <= now
}
