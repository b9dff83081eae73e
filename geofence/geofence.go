// Package geofence decides whether a reported position lies within an
// event's admission radius.
package geofence

import (
	"errors"
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// ErrBadCoordinates marks NaN, infinite, or out-of-range coordinates. These
// are configuration or payload errors, not geofence denials, and callers
// must report them as such.
var ErrBadCoordinates = errors.New("invalid coordinates")

// Distance returns the great-circle distance between two points in meters.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether the user position is within radiusMeters of
// the venue, allowing bufferMeters of GPS slack. A non-positive radius
// admits only a distance of exactly zero.
func WithinRadius(userLat, userLng, venueLat, venueLng, radiusMeters, bufferMeters float64) (bool, error) {
	if err := checkCoordinate(userLat, userLng); err != nil {
		return false, fmt.Errorf("user position: %w", err)
	}
	if err := checkCoordinate(venueLat, venueLng); err != nil {
		return false, fmt.Errorf("venue position: %w", err)
	}

	d := Distance(userLat, userLng, venueLat, venueLng)
	if radiusMeters <= 0 {
		return d == 0, nil
	}
	return d <= radiusMeters+bufferMeters, nil
}

// ValidCoordinates reports whether a (lat, lng) pair is usable. Callers use
// it to tell a malformed request position apart from a misconfigured venue.
func ValidCoordinates(lat, lng float64) error {
	return checkCoordinate(lat, lng)
}

func checkCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return ErrBadCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrBadCoordinates
	}
	return nil
}
