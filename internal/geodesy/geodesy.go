// Package geodesy solves the direct and inverse geodesic problems on the
// WGS84 ellipsoid.
package geodesy

import (
	"math"

	"github.com/tidwall/geodesic"
)

const (
	// MetersPerNauticalMile is the international nautical mile.
	MetersPerNauticalMile = 1852.0

	// KnotsPerMeterPerSecond converts m/s to knots.
	KnotsPerMeterPerSecond = 3600.0 / MetersPerNauticalMile
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Forward returns the point reached by travelling distance meters from
// origin along the initial azimuth (degrees clockwise from north).
func Forward(origin Point, azimuth, distance float64) Point {
	var lat, lon float64
	geodesic.WGS84.Direct(origin.Lat, origin.Lon, azimuth, distance, &lat, &lon, nil)
	return Point{Lon: lon, Lat: lat}
}

// Inverse returns the forward azimuth at from, the azimuth of the geodesic
// as it arrives at to, and the distance in meters.
func Inverse(from, to Point) (azimuth, arrival, distance float64) {
	geodesic.WGS84.Inverse(from.Lat, from.Lon, to.Lat, to.Lon, &distance, &azimuth, &arrival)
	return azimuth, arrival, distance
}

// Distance returns the geodesic distance in meters.
func Distance(from, to Point) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(from.Lat, from.Lon, to.Lat, to.Lon, &s12, nil, nil)
	return s12
}

// NormalizeAzimuth reduces an azimuth to [0, 360).
func NormalizeAzimuth(azimuth float64) float64 {
	a := math.Mod(azimuth, 360)
	if a < 0 {
		a += 360
	}
	return a
}
