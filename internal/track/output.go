package track

import (
	"slices"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/atcf"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/geodesy"
	"github.com/couchcryptid/storm-vortex-track/internal/isotach"
	"github.com/peterstace/simplefeatures/geom"
)

// String renders the view as fort.22 lines.
func (t *Track) String() string {
	return atcf.Encode(t.Data(), t.StartDate())
}

// Lines renders the view as fort.22 lines, one per fix.
func (t *Track) Lines() []string {
	return atcf.Lines(t.Data(), t.StartDate())
}

// RecordNumbers numbers each row of the view by its timestamp, from 1.
func (t *Track) RecordNumbers() []int {
	return atcf.RecordNumbers(t.view())
}

// Write saves the fort.22 rendering to path. An existing file is left alone
// unless overwrite is set; written reports whether the file was written.
func (t *Track) Write(path string, overwrite bool) (written bool, err error) {
	return atcf.WriteFile(path, t.String(), overwrite, t.logger)
}

// Isotachs returns one ring per fix in view reporting the windSpeed isotach.
func (t *Track) Isotachs(windSpeed, segments int) ([]isotach.Ring, error) {
	return isotach.Rings(t.Data(), windSpeed, segments)
}

// WindSwath returns the area swept by the given isotach over the view.
func (t *Track) WindSwath(threshold, segments int) (geom.Geometry, error) {
	return isotach.WindSwath(t.Data(), threshold, segments)
}

// TrackLength is the geodesic length in meters of the path through the rows
// of the view, in order.
func (t *Track) TrackLength() float64 {
	view := t.view()
	var total float64
	for i := 1; i < len(view); i++ {
		total += geodesy.Distance(
			geodesy.Point{Lon: view[i-1].Longitude, Lat: view[i-1].Latitude},
			geodesy.Point{Lon: view[i].Longitude, Lat: view[i].Latitude},
		)
	}
	return total
}

// Name is the most frequent non-blank storm name in view. Ties go to the name
// seen first.
func (t *Track) Name() string {
	counts := make(map[string]int)
	var order []string
	for _, f := range t.view() {
		if f.Name == "" {
			continue
		}
		if counts[f.Name] == 0 {
			order = append(order, f.Name)
		}
		counts[f.Name]++
	}
	name, best := "", 0
	for _, n := range order {
		if counts[n] > best {
			name, best = n, counts[n]
		}
	}
	return name
}

// Basin is the basin of the first fix in view.
func (t *Track) Basin() string {
	if view := t.view(); len(view) > 0 {
		return view[0].Basin
	}
	return ""
}

// StormNumber is the storm number of the first fix in view.
func (t *Track) StormNumber() int {
	if view := t.view(); len(view) > 0 {
		return view[0].StormNumber
	}
	return 0
}

// Year is the year of the first fix in view.
func (t *Track) Year() int {
	if view := t.view(); len(view) > 0 {
		return view[0].Time.Year()
	}
	return 0
}

// Equal reports whether two tracks present the same view.
func (t *Track) Equal(other *Track) bool {
	if other == nil {
		return false
	}
	return slices.EqualFunc(t.Data(), other.Data(), fixesEqual)
}

func fixesEqual(a, b domain.Fix) bool {
	if !a.Time.Equal(b.Time) || !pressureEqual(a.CentralPressure, b.CentralPressure) ||
		!pressureEqual(a.BackgroundPressure, b.BackgroundPressure) {
		return false
	}
	a.Time, b.Time = time.Time{}, time.Time{}
	a.CentralPressure, b.CentralPressure = nil, nil
	a.BackgroundPressure, b.BackgroundPressure = nil, nil
	return a == b
}

func pressureEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Clone returns an independent track over a copy of the table with the same
// source configuration, window and record type.
func (t *Track) Clone() *Track {
	c := *t
	c.table = t.table.Clone()
	return &c
}

// Summary describes a track for listings and the HTTP service.
type Summary struct {
	StormID     string    `json:"storm_id"`
	Name        string    `json:"name"`
	Basin       string    `json:"basin"`
	StormNumber int       `json:"storm_number"`
	Year        int       `json:"year"`
	FileDeck    string    `json:"file_deck"`
	Mode        string    `json:"mode"`
	RecordType  string    `json:"record_type,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Fixes       int       `json:"fixes"`
	Records     int       `json:"records"`
	DurationHrs float64   `json:"duration_hours"`
	LengthKm    float64   `json:"length_km"`
}

// Summarize reports identity, window and extent of the view.
func (t *Track) Summarize() Summary {
	view := t.view()
	records := 0
	if n := atcf.RecordNumbers(view); len(n) > 0 {
		records = slices.Max(n)
	}
	var id string
	if !t.cfg.stormID.IsZero() {
		id = t.cfg.stormID.String()
	}
	return Summary{
		StormID:     id,
		Name:        t.Name(),
		Basin:       t.Basin(),
		StormNumber: t.StormNumber(),
		Year:        t.Year(),
		FileDeck:    string(t.cfg.deck),
		Mode:        string(t.cfg.mode),
		RecordType:  t.recordType,
		Start:       t.StartDate(),
		End:         t.snappedEnd(),
		Fixes:       len(view),
		Records:     records,
		DurationHrs: t.Duration().Hours(),
		LengthKm:    t.TrackLength() / 1000,
	}
}
