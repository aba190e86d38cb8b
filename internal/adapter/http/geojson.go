package http

import (
	"fmt"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/isotach"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
	"github.com/peterstace/simplefeatures/geom"
)

// toOrb converts a polygon from the geometry engine for GeoJSON encoding,
// simplifying it when tolerance (degrees) is positive.
func toOrb(g geom.Geometry, tolerance float64) (orb.Geometry, error) {
	og, err := wkb.Unmarshal(g.AsBinary())
	if err != nil {
		return nil, fmt.Errorf("convert geometry: %w", err)
	}
	if tolerance > 0 {
		og = simplify.DouglasPeucker(tolerance).Simplify(og)
	}
	return og, nil
}

func ringCollection(rings []isotach.Ring, tolerance float64) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, ring := range rings {
		g, err := toOrb(ring.Polygon, tolerance)
		if err != nil {
			return nil, err
		}
		f := geojson.NewFeature(g)
		f.Properties["time"] = ring.Time.UTC().Format(time.RFC3339)
		f.Properties["record_type"] = ring.RecordType
		f.Properties["isotach"] = ring.Isotach
		fc.Append(f)
	}
	return fc, nil
}

func swathFeature(tr *track.Track, threshold int, g geom.Geometry, tolerance float64) (*geojson.Feature, error) {
	og, err := toOrb(g, tolerance)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(og)
	f.Properties["storm_id"] = tr.StormID().String()
	f.Properties["name"] = tr.Name()
	f.Properties["isotach"] = threshold
	f.Properties["start"] = tr.StartDate().UTC().Format(time.RFC3339)
	f.Properties["end"] = tr.EndDate().UTC().Format(time.RFC3339)
	return f, nil
}

// trackLine draws the storm centre path through every distinct fix time.
func trackLine(tr *track.Track) *geojson.Feature {
	var line orb.LineString
	var last time.Time
	for i, fix := range tr.Data() {
		if i > 0 && fix.Time.Equal(last) {
			continue
		}
		line = append(line, orb.Point{fix.Longitude, fix.Latitude})
		last = fix.Time
	}
	f := geojson.NewFeature(line)
	f.Properties["storm_id"] = tr.StormID().String()
	f.Properties["name"] = tr.Name()
	f.Properties["length_km"] = tr.TrackLength() / 1000
	return f
}
