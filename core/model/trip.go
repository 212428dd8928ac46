package model

import "github.com/kilianp07/freightsim/core/geo"

// Trip holds the three legs of a single freight run:
// current location to pickup, pickup to delivery and delivery to base.
type Trip struct {
	ToPickupKm   float64
	ToDeliveryKm float64
	ToBaseKm     float64

	ToPickupS   float64
	ToDeliveryS float64
	ToBaseS     float64
}

// PlanTrip computes the legs for carrying f from `from` and returning to base.
func PlanTrip(from, base geo.Coordinate, speedKmh float64, f Freight) (Trip, error) {
	var (
		t   Trip
		err error
	)
	if t.ToPickupKm, t.ToPickupS, err = geo.DistanceAndTime(from, f.Pickup, speedKmh); err != nil {
		return Trip{}, err
	}
	if t.ToDeliveryKm, t.ToDeliveryS, err = geo.DistanceAndTime(f.Pickup, f.Delivery, speedKmh); err != nil {
		return Trip{}, err
	}
	if t.ToBaseKm, t.ToBaseS, err = geo.DistanceAndTime(f.Delivery, base, speedKmh); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// DistanceKm is the total route distance.
func (t Trip) DistanceKm() float64 {
	return t.ToPickupKm + t.ToDeliveryKm + t.ToBaseKm
}

// Seconds is the total driving time.
func (t Trip) Seconds() float64 {
	return t.ToPickupS + t.ToDeliveryS + t.ToBaseS
}

// RouteDistance returns the three-leg distance without requiring a speed.
func RouteDistance(from, base geo.Coordinate, f Freight) float64 {
	return geo.Haversine(from, f.Pickup) + geo.Haversine(f.Pickup, f.Delivery) + geo.Haversine(f.Delivery, base)
}
