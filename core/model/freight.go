package model

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/freightsim/core/geo"
)

// Freight is a single delivery job. It is never mutated once loaded.
type Freight struct {
	ID       string         `json:"id" yaml:"id"`
	Weight   float64        `json:"weight" yaml:"weight"`
	Pickup   geo.Coordinate `json:"pickup" yaml:"pickup"`
	Delivery geo.Coordinate `json:"delivery" yaml:"delivery"`

	// Absolute target times. Optional; when set they take precedence over
	// the offsets after NormalizeFreights.
	PickupAt   time.Time `json:"pickup_at,omitempty" yaml:"pickup_at,omitempty"`
	DeliveryAt time.Time `json:"delivery_at,omitempty" yaml:"delivery_at,omitempty"`

	// Target times in simulation seconds.
	PickupOffset   float64 `json:"pickup_offset" yaml:"pickup_offset"`
	DeliveryOffset float64 `json:"delivery_offset" yaml:"delivery_offset"`
}

// Validate checks that the freight can be simulated. Offsets are targets,
// not a window: a pickup offset after the delivery offset is accepted and
// only delays dispatch.
func (f Freight) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("freight id is required")
	}
	if !finite(f.Weight) {
		return fmt.Errorf("freight %s: weight must be a finite number", f.ID)
	}
	if !finite(f.PickupOffset) || !finite(f.DeliveryOffset) {
		return fmt.Errorf("freight %s: target offsets must be finite numbers", f.ID)
	}
	if f.Weight < 0 {
		return fmt.Errorf("freight %s: weight must not be negative", f.ID)
	}
	if f.PickupOffset < 0 || f.DeliveryOffset < 0 {
		return fmt.Errorf("freight %s: target offsets must not be negative", f.ID)
	}
	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// hasAbsolute reports whether any absolute target time is set.
func (f Freight) hasAbsolute() bool {
	return !f.PickupAt.IsZero() || !f.DeliveryAt.IsZero()
}

// NormalizeFreights returns a copy of fs where absolute target times are
// converted into simulation-relative offsets. The reference instant is the
// earliest absolute timestamp across all freights. Freights without absolute
// times keep their offsets. The returned time is the reference instant, zero
// when no freight carries absolute times.
func NormalizeFreights(fs []Freight) ([]Freight, time.Time) {
	var origin time.Time
	for _, f := range fs {
		for _, ts := range []time.Time{f.PickupAt, f.DeliveryAt} {
			if ts.IsZero() {
				continue
			}
			if origin.IsZero() || ts.Before(origin) {
				origin = ts
			}
		}
	}
	out := make([]Freight, len(fs))
	copy(out, fs)
	if origin.IsZero() {
		return out, origin
	}
	for i := range out {
		if !out[i].hasAbsolute() {
			continue
		}
		if !out[i].PickupAt.IsZero() {
			out[i].PickupOffset = out[i].PickupAt.Sub(origin).Seconds()
		}
		if !out[i].DeliveryAt.IsZero() {
			out[i].DeliveryOffset = out[i].DeliveryAt.Sub(origin).Seconds()
		}
	}
	return out, origin
}

// LatestDelivery returns the largest delivery offset of fs.
func LatestDelivery(fs []Freight) float64 {
	var latest float64
	for _, f := range fs {
		if f.DeliveryOffset > latest {
			latest = f.DeliveryOffset
		}
	}
	return latest
}
