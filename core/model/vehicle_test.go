package model

import (
	"errors"
	"testing"

	"github.com/kilianp07/freightsim/core/geo"
)

func TestVehicleBaseOrStart(t *testing.T) {
	v := Vehicle{ID: "v1", Start: geo.Coordinate{Lat: 1, Lon: 2}}
	if got := v.BaseOrStart(); got != v.Start {
		t.Fatalf("expected start as base got %v", got)
	}
	base := geo.Coordinate{Lat: 3, Lon: 4}
	v.Base = &base
	if got := v.BaseOrStart(); got != base {
		t.Fatalf("expected %v got %v", base, got)
	}
}

func TestVehicleValidate(t *testing.T) {
	if err := (Vehicle{ID: "v1", SpeedKmh: 50, Capacity: 10}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Vehicle{ID: "v1", SpeedKmh: 0}.Validate()
	if !errors.Is(err, geo.ErrInvalidSpeed) {
		t.Fatalf("expected ErrInvalidSpeed got %v", err)
	}
	if err := (Vehicle{SpeedKmh: 10}).Validate(); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := (Vehicle{ID: "v", SpeedKmh: 10, Capacity: -1}).Validate(); err == nil {
		t.Fatal("expected capacity error")
	}
}

func TestRuntimeInfoEligible(t *testing.T) {
	info := NewRuntimeInfo(Vehicle{ID: "v1", Capacity: 100, SpeedKmh: 40})
	info.AvailableAt = 50
	f := Freight{ID: "f1", Weight: 100}
	if info.Eligible(f, 49) {
		t.Fatal("vehicle should not be available before 50")
	}
	if !info.Eligible(f, 50) {
		t.Fatal("vehicle should be eligible at 50 with exact capacity")
	}
	f.Weight = 101
	if info.Eligible(f, 60) {
		t.Fatal("overweight freight must not be eligible")
	}
}

func TestPlanTrip(t *testing.T) {
	from := geo.Coordinate{Lat: 45.0, Lon: 4.0}
	base := geo.Coordinate{Lat: 45.2, Lon: 4.0}
	f := Freight{ID: "f", Pickup: geo.Coordinate{Lat: 45.1, Lon: 4.0}, Delivery: geo.Coordinate{Lat: 45.1, Lon: 4.1}}
	trip, err := PlanTrip(from, base, 60, f)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := geo.Haversine(from, f.Pickup) + geo.Haversine(f.Pickup, f.Delivery) + geo.Haversine(f.Delivery, base)
	if trip.DistanceKm() != want {
		t.Fatalf("expected %v got %v", want, trip.DistanceKm())
	}
	if RouteDistance(from, base, f) != want {
		t.Fatalf("route distance mismatch")
	}
	if d := trip.Seconds() - want/60*3600; d > 1e-6 || d < -1e-6 {
		t.Fatalf("unexpected trip time %v", trip.Seconds())
	}
	if _, err := PlanTrip(from, base, 0, f); err == nil {
		t.Fatal("expected speed error")
	}
}
