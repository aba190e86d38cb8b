// Package isotach builds wind-field polygons from quadrant wind radii.
package isotach

import (
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/geodesy"
	"github.com/peterstace/simplefeatures/geom"
)

// DefaultSegments is the number of azimuths sampled across each quadrant.
const DefaultSegments = 91

// Radii at or below this many meters contribute no arc.
const minRadius = 1.0

// SwathIsotachs are the thresholds a wind swath can be built for.
var SwathIsotachs = []int{34, 50, 64}

// Ring is the area enclosed by one isotach at one fix.
type Ring struct {
	Time       time.Time
	RecordType string
	Isotach    int
	Polygon    geom.Geometry // empty when every quadrant radius is zero
}

// Rings builds one ring per fix whose isotach threshold equals windSpeed, in
// table order.
func Rings(fixes domain.RecordTable, windSpeed, segments int) ([]Ring, error) {
	if segments < 2 {
		return nil, fmt.Errorf("%w: segments must be at least 2, got %d", domain.ErrConfiguration, segments)
	}

	var rings []Ring
	for _, f := range fixes {
		if f.Isotach != windSpeed {
			continue
		}
		polygon, err := ringPolygon(f, segments)
		if err != nil {
			return nil, fmt.Errorf("isotach %d kt at %s: %w", windSpeed, f.Time.Format(time.RFC3339), err)
		}
		rings = append(rings, Ring{
			Time:       f.Time,
			RecordType: f.RecordType,
			Isotach:    windSpeed,
			Polygon:    polygon,
		})
	}
	return rings, nil
}

// WindSwath unions the convex hulls of consecutive isotach rings.
func WindSwath(fixes domain.RecordTable, isotach, segments int) (geom.Geometry, error) {
	if !slices.Contains(SwathIsotachs, isotach) {
		return geom.Geometry{}, fmt.Errorf("%w: %d kt, must be one of %v", domain.ErrInvalidIsotach, isotach, SwathIsotachs)
	}
	rings, err := Rings(fixes, isotach, segments)
	if err != nil {
		return geom.Geometry{}, err
	}
	return Swath(rings)
}

// Swath unions the convex hulls of each pair of temporally adjacent rings.
// Fewer than two non-empty rings yield an empty polygon.
func Swath(rings []Ring) (geom.Geometry, error) {
	nonEmpty := 0
	for _, r := range rings {
		if !r.Polygon.IsEmpty() {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return emptyPolygon(), nil
	}

	swath := emptyPolygon()
	for i := 0; i+1 < len(rings); i++ {
		pair, err := union(rings[i].Polygon, rings[i+1].Polygon)
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("union rings %d and %d: %w", i, i+1, err)
		}
		hull := pair.ConvexHull()
		if hull.IsEmpty() {
			continue
		}
		if swath, err = union(swath, hull); err != nil {
			return geom.Geometry{}, fmt.Errorf("union hull %d: %w", i, err)
		}
	}
	return swath, nil
}

// ringPolygon walks the quadrants NE, NW, SW, SE, each spanning 90 degrees
// from a start rotated by the direction of motion, and unions a wedge for
// every quadrant with a positive radius.
func ringPolygon(f domain.Fix, segments int) (geom.Geometry, error) {
	radii := []float64{f.RadiusNE, f.RadiusNW, f.RadiusSW, f.RadiusSE}
	center := geodesy.Point{Lon: f.Longitude, Lat: f.Latitude}
	start := 360 - f.Direction

	ring := emptyPolygon()
	for q, radiusNM := range radii {
		from := start + 90*float64(q)
		radius := radiusNM * geodesy.MetersPerNauticalMile
		if radius <= minRadius {
			continue
		}
		var err error
		if ring, err = union(ring, wedge(center, from, from+90, radius, segments)); err != nil {
			return geom.Geometry{}, err
		}
	}
	return ring, nil
}

// wedge is the sector from center out to radius meters between two azimuths.
func wedge(center geodesy.Point, from, to, radius float64, segments int) geom.Geometry {
	coords := make([]float64, 0, 2*(segments+2))
	coords = append(coords, center.Lon, center.Lat)
	for i := range segments {
		azimuth := from + (to-from)*float64(i)/float64(segments-1)
		p := geodesy.Forward(center, azimuth, radius)
		coords = append(coords, p.Lon, p.Lat)
	}
	coords = append(coords, center.Lon, center.Lat)

	shell := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{shell}).AsGeometry()
}

func union(a, b geom.Geometry) (geom.Geometry, error) {
	switch {
	case a.IsEmpty():
		return b, nil
	case b.IsEmpty():
		return a, nil
	}
	return geom.Union(a, b)
}

func emptyPolygon() geom.Geometry {
	return geom.Polygon{}.AsGeometry()
}
