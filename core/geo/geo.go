// Package geo provides great-circle distance and travel time helpers.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// ErrInvalidSpeed is returned when a travel time is requested for a
// non-positive speed.
var ErrInvalidSpeed = errors.New("speed must be positive")

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// TravelTime converts a distance in km at speedKmh into seconds.
func TravelTime(distKm, speedKmh float64) (float64, error) {
	if speedKmh <= 0 {
		return 0, ErrInvalidSpeed
	}
	return distKm / speedKmh * 3600, nil
}

// DistanceAndTime returns both the distance between a and b and the time
// needed to cover it at speedKmh.
func DistanceAndTime(a, b Coordinate, speedKmh float64) (float64, float64, error) {
	d := Haversine(a, b)
	t, err := TravelTime(d, speedKmh)
	if err != nil {
		return d, 0, err
	}
	return d, t, nil
}
