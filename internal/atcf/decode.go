// Package atcf reads and writes ATCF track lines.
package atcf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/klauspost/compress/gzip"
)

// ErrNoRecords is returned when a source holds no usable fixes.
var ErrNoRecords = errors.New("no atcf records")

// minFields is basin through longitude; anything shorter is not a fix.
const minFields = 8

// Column positions in an ATCF line.
const (
	colBasin = iota
	colNumber
	colTime
	colTechNum
	colRecordType
	colForecastHour
	colLatitude
	colLongitude
	colMaxWind
	colCentralPressure
	colDevelopmentLevel
	colIsotach
	colQuadrant
	colRadiusNE
	colRadiusSE
	colRadiusSW
	colRadiusNW
	colBackgroundPressure
	colLastClosedIsobar
	colMaxWindRadius
	colGusts
	colEye
	colSubregion
	colMaxSeas
	colInitials
	colDirection
	colSpeed
	colName
)

// DecodeOptions controls which rows are kept and how times are read.
type DecodeOptions struct {
	// RecordTypes keeps only the listed record types. Empty keeps all.
	RecordTypes []string

	// ApplyForecastHours shifts each fix time by its forecast hour, which is
	// how a-deck aids express the valid time of a forecast.
	ApplyForecastHours bool
}

// Decode reads ATCF or fort.22 lines, transparently decompressing gzip input.
// The result is sorted by time and record type.
func Decode(r io.Reader, opts DecodeOptions) (domain.RecordTable, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	allowed := make([]string, 0, len(opts.RecordTypes))
	for _, rt := range opts.RecordTypes {
		allowed = append(allowed, strings.ToUpper(strings.TrimSpace(rt)))
	}

	var table domain.RecordTable
	scanner := bufio.NewScanner(br)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fix, err := DecodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("parse atcf line %d: %w", lineNumber, err)
		}
		if len(allowed) > 0 && !slices.Contains(allowed, fix.RecordType) {
			continue
		}
		if opts.ApplyForecastHours {
			fix.Time = fix.Time.Add(time.Duration(fix.ForecastHour) * time.Hour)
		}
		table = append(table, fix)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read atcf: %w", err)
	}
	if len(table) == 0 {
		return nil, ErrNoRecords
	}

	table.SortByTime()
	return table, nil
}

// DecodeLine parses one comma-separated ATCF line.
func DecodeLine(line string) (domain.Fix, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < minFields {
		return domain.Fix{}, fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}

	number, err := strconv.Atoi(fields[colNumber])
	if err != nil {
		return domain.Fix{}, fmt.Errorf("storm number %q: %w", fields[colNumber], err)
	}
	fixTime, err := parseFixTime(fields[colTime])
	if err != nil {
		return domain.Fix{}, err
	}
	lat, err := parseCoordinate(fields[colLatitude], 'N', 'S')
	if err != nil {
		return domain.Fix{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseCoordinate(fields[colLongitude], 'E', 'W')
	if err != nil {
		return domain.Fix{}, fmt.Errorf("longitude: %w", err)
	}

	return domain.Fix{
		Basin:            strings.ToUpper(fields[colBasin]),
		StormNumber:      number,
		Time:             fixTime,
		RecordType:       strings.ToUpper(fields[colRecordType]),
		ForecastHour:     int(floatAt(fields, colForecastHour)),
		Latitude:         lat,
		Longitude:        lon,
		MaxSustainedWind: floatAt(fields, colMaxWind),
		CentralPressure:  pressureAt(fields, colCentralPressure),
		DevelopmentLevel: stringAt(fields, colDevelopmentLevel),
		Isotach:          int(floatAt(fields, colIsotach)),
		Quadrant:         stringAt(fields, colQuadrant),
		RadiusNE:         floatAt(fields, colRadiusNE),
		RadiusSE:         floatAt(fields, colRadiusSE),
		RadiusSW:         floatAt(fields, colRadiusSW),
		RadiusNW:         floatAt(fields, colRadiusNW),

		BackgroundPressure:       pressureAt(fields, colBackgroundPressure),
		RadiusOfLastClosedIsobar: floatAt(fields, colLastClosedIsobar),
		RadiusOfMaxWinds:         floatAt(fields, colMaxWindRadius),

		Direction: floatAt(fields, colDirection),
		Speed:     floatAt(fields, colSpeed),
		Name:      stringAt(fields, colName),
	}, nil
}

// parseFixTime accepts YYYYMMDDHH and YYYYMMDDHHMM, always in UTC.
func parseFixTime(s string) (time.Time, error) {
	layout := "2006010215"
	if len(s) == 12 {
		layout = "200601021504"
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("fix time %q: %w", s, err)
	}
	return t, nil
}

// parseCoordinate reads tenths of degrees with a hemisphere suffix, e.g. "571W".
func parseCoordinate(s string, positive, negative byte) (float64, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	hemisphere := s[len(s)-1] &^ 0x20 // upper case
	tenths, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	switch hemisphere {
	case positive:
		return float64(tenths) / 10, nil
	case negative:
		return -float64(tenths) / 10, nil
	default:
		return 0, fmt.Errorf("invalid hemisphere in %q", s)
	}
}

func stringAt(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return fields[i]
}

// floatAt returns 0 for missing or unparsable numeric columns.
func floatAt(fields []string, i int) float64 {
	s := stringAt(fields, i)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// pressureAt treats missing and non-positive pressures as unreported.
func pressureAt(fields []string, i int) *float64 {
	v := floatAt(fields, i)
	if v <= 0 {
		return nil
	}
	return &v
}
