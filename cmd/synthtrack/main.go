// Command synthtrack writes a synthetic best track with constant motion and
// intensity as a fort.22 file. The output is a fixture for exercising the
// velocity, isotach, and swath code against known answers.
//
// Usage:
//
//	go run ./cmd/synthtrack -out testdata/synthetic.fort.22 \
//	  -heading 315 -speed 12 -hours 72
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/geodesy"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
)

type params struct {
	basin    string
	number   int
	name     string
	start    time.Time
	hours    int
	step     int
	lon, lat float64
	heading  float64 // degrees clockwise from north
	speed    float64 // knots
	wind     float64
	pressure float64
	r34      float64 // nmi
	r64      float64 // nmi
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var p params
	var start string
	flag.StringVar(&p.basin, "basin", "AL", "two letter basin")
	flag.IntVar(&p.number, "number", 99, "storm number")
	flag.StringVar(&p.name, "name", "SYNTHETIC", "storm name")
	flag.StringVar(&start, "start", "2020090100", "first fix time, YYYYMMDDHH")
	flag.IntVar(&p.hours, "hours", 48, "track length in hours")
	flag.IntVar(&p.step, "step", 6, "hours between fixes")
	flag.Float64Var(&p.lon, "lon", -60, "initial longitude")
	flag.Float64Var(&p.lat, "lat", 20, "initial latitude")
	flag.Float64Var(&p.heading, "heading", 270, "direction of motion, degrees from north")
	flag.Float64Var(&p.speed, "speed", 10, "forward speed in knots")
	flag.Float64Var(&p.wind, "wind", 100, "maximum sustained wind in knots")
	flag.Float64Var(&p.pressure, "pressure", 960, "central pressure in hPa")
	flag.Float64Var(&p.r34, "r34", 120, "34 kt radius in nmi, all quadrants")
	flag.Float64Var(&p.r64, "r64", 30, "64 kt radius in nmi, all quadrants; 0 omits the row")
	out := flag.String("out", "", "output fort.22 path")
	overwrite := flag.Bool("overwrite", false, "replace an existing file")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if p.step <= 0 || p.hours < 0 {
		return fmt.Errorf("-step must be positive and -hours non-negative")
	}
	var err error
	if p.start, err = time.Parse("2006010215", start); err != nil {
		return fmt.Errorf("-start: %w", err)
	}

	tr, err := track.New(context.Background(), track.Table(synthesize(p)))
	if err != nil {
		return err
	}
	written, err := tr.Write(*out, *overwrite)
	if err != nil {
		return err
	}
	if written {
		log.Printf("%s: %d rows, %.0f km", *out, tr.Len(), tr.TrackLength()/1000)
	}
	return nil
}

// synthesize places one fix every p.step hours along a geodesic.
func synthesize(p params) domain.RecordTable {
	stepMeters := p.speed / geodesy.KnotsPerMeterPerSecond * float64(p.step) * 3600
	pos := geodesy.Point{Lon: p.lon, Lat: p.lat}

	var table domain.RecordTable
	for h := 0; h <= p.hours; h += p.step {
		base := domain.Fix{
			Basin:              p.basin,
			StormNumber:        p.number,
			Time:               p.start.Add(time.Duration(h) * time.Hour),
			RecordType:         "BEST",
			Latitude:           pos.Lat,
			Longitude:          pos.Lon,
			MaxSustainedWind:   p.wind,
			CentralPressure:    domain.Pressure(p.pressure),
			BackgroundPressure: domain.Pressure(1012),
			DevelopmentLevel:   "HU",
			Name:               p.name,
		}
		table = append(table, withRadius(base, 34, p.r34))
		if p.r64 > 0 {
			table = append(table, withRadius(base, 64, p.r64))
		}
		pos = geodesy.Forward(pos, p.heading, stepMeters)
	}
	return table
}

func withRadius(f domain.Fix, isotach int, radius float64) domain.Fix {
	f.Isotach = isotach
	f.Quadrant = "NEQ"
	f.RadiusNE, f.RadiusSE, f.RadiusSW, f.RadiusNW = radius, radius, radius, radius
	return f
}
