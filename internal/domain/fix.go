package domain

import (
	"slices"
	"strings"
	"time"
)

// Fix is one row of an ATCF track: a storm position and intensity at one
// time, as reported by one source. Wind radii describe a single isotach.
type Fix struct {
	Basin            string
	StormNumber      int
	Time             time.Time
	RecordType       string
	ForecastHour     int
	Latitude         float64
	Longitude        float64
	MaxSustainedWind float64
	CentralPressure  *float64 // hPa, nil when unreported
	DevelopmentLevel string
	Isotach          int // 0, 34, 50 or 64 kt
	Quadrant         string
	RadiusNE         float64
	RadiusSE         float64
	RadiusSW         float64
	RadiusNW         float64

	BackgroundPressure       *float64 // hPa, nil when unreported
	RadiusOfLastClosedIsobar float64
	RadiusOfMaxWinds         float64

	// Derived by the velocity computation, not authoritative.
	Direction float64 // degrees clockwise from north
	Speed     float64 // knots

	Name string
}

// RecordTable is the decoded set of fixes for one storm.
type RecordTable []Fix

// Clone returns a deep copy of the table.
func (t RecordTable) Clone() RecordTable {
	if t == nil {
		return nil
	}
	out := make(RecordTable, len(t))
	for i, f := range t {
		out[i] = f
		out[i].CentralPressure = clonePressure(f.CentralPressure)
		out[i].BackgroundPressure = clonePressure(f.BackgroundPressure)
	}
	return out
}

// SortByTime orders fixes by timestamp, then record type, keeping the
// original order of rows that tie on both.
func (t RecordTable) SortByTime() {
	slices.SortStableFunc(t, func(a, b Fix) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return strings.Compare(a.RecordType, b.RecordType)
	})
}

// Bounds returns the earliest and latest fix times. ok is false for an empty table.
func (t RecordTable) Bounds() (start, end time.Time, ok bool) {
	if len(t) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = t[0].Time, t[0].Time
	for _, f := range t[1:] {
		if f.Time.Before(start) {
			start = f.Time
		}
		if f.Time.After(end) {
			end = f.Time
		}
	}
	return start, end, true
}

// UniqueTimes returns the distinct fix times in ascending order.
func (t RecordTable) UniqueTimes() []time.Time {
	times := make([]time.Time, 0, len(t))
	for _, f := range t {
		times = append(times, f.Time)
	}
	slices.SortFunc(times, time.Time.Compare)
	return slices.CompactFunc(times, time.Time.Equal)
}

// Pressure returns a pointer to v, for populating optional pressure fields.
func Pressure(v float64) *float64 {
	return &v
}

func clonePressure(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
