package atcf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bDeck = `AL, 11, 2017083000,   , BEST,   0, 162N,  269W,  30, 1008, TD,   0,    ,    0,    0,    0,    0, 1012,  150,  40,   0,   0,   L,   0,    ,   0,   0,     INVEST, M,
AL, 11, 2017083006,   , BEST,   0, 161N,  279W,  35, 1007, TS,  34, NEQ,   30,    0,    0,   30, 1012,  150,  40,  45,   0,   L,   0,    ,   0,   0,       IRMA, D,
AL, 11, 2017083012,   , BEST,   0, 160N,  291W,  45, 1004, TS,  34, NEQ,   40,   30,    0,   40, 1012,  150,  35,  55,   0,   L,   0,    ,   0,   0,       IRMA, D,
`

const aDeck = `AL, 11, 2017083006, 03, OFCL,   0, 161N,  279W,  35, 1007, TS,  34, NEQ,   30,    0,    0,   30,    0,    0,   0,   0,   0,    ,   0, BLW,   0,   0,       IRMA
AL, 11, 2017083006, 03, OFCL,  12, 163N,  296W,  40,    0, TS,  34, NEQ,   40,    0,    0,   40,    0,    0,   0,   0,   0,    ,   0, BLW,   0,   0,       IRMA
AL, 11, 2017083006, 03, HWRF,  12, 164N,  298W,  44,  999, TS,  34, NEQ,   45,   20,    0,   40,    0,    0,   0,   0,   0,    ,   0, BLW,   0,   0,       IRMA
`

func TestDecode_BestTrack(t *testing.T) {
	table, err := Decode(strings.NewReader(bDeck), DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, table, 3)

	first := table[0]
	assert.Equal(t, "AL", first.Basin)
	assert.Equal(t, 11, first.StormNumber)
	assert.Equal(t, time.Date(2017, 8, 30, 0, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, "BEST", first.RecordType)
	assert.InDelta(t, 16.2, first.Latitude, 1e-9)
	assert.InDelta(t, -26.9, first.Longitude, 1e-9)
	assert.Equal(t, 30.0, first.MaxSustainedWind)
	require.NotNil(t, first.CentralPressure)
	assert.Equal(t, 1008.0, *first.CentralPressure)
	assert.Equal(t, "TD", first.DevelopmentLevel)
	assert.Equal(t, 0, first.Isotach)
	assert.Empty(t, first.Quadrant)
	require.NotNil(t, first.BackgroundPressure)
	assert.Equal(t, 1012.0, *first.BackgroundPressure)
	assert.Equal(t, 150.0, first.RadiusOfLastClosedIsobar)
	assert.Equal(t, 40.0, first.RadiusOfMaxWinds)
	assert.Equal(t, "INVEST", first.Name)

	third := table[2]
	assert.Equal(t, 34, third.Isotach)
	assert.Equal(t, "NEQ", third.Quadrant)
	assert.Equal(t, []float64{40, 30, 0, 40}, []float64{third.RadiusNE, third.RadiusSE, third.RadiusSW, third.RadiusNW})
}

func TestDecode_ForecastHoursAndRecordTypes(t *testing.T) {
	table, err := Decode(strings.NewReader(aDeck), DecodeOptions{
		RecordTypes:        []string{"ofcl"},
		ApplyForecastHours: true,
	})
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, time.Date(2017, 8, 30, 6, 0, 0, 0, time.UTC), table[0].Time)
	assert.Equal(t, time.Date(2017, 8, 30, 18, 0, 0, 0, time.UTC), table[1].Time)
	assert.Equal(t, 12, table[1].ForecastHour)
	assert.Nil(t, table[1].CentralPressure, "zero pressure is unreported")
	assert.Nil(t, table[1].BackgroundPressure)
}

func TestDecode_SortsByTimeThenRecordType(t *testing.T) {
	table, err := Decode(strings.NewReader(aDeck), DecodeOptions{ApplyForecastHours: true})
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, "OFCL", table[0].RecordType)
	assert.Equal(t, "HWRF", table[1].RecordType)
	assert.Equal(t, "OFCL", table[2].RecordType)
}

func TestDecode_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(bDeck))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	table, err := Decode(&buf, DecodeOptions{})
	require.NoError(t, err)
	assert.Len(t, table, 3)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(strings.NewReader("\n\n"), DecodeOptions{})
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = Decode(strings.NewReader(bDeck), DecodeOptions{RecordTypes: []string{"OFCL"}})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestDecode_InvalidLine(t *testing.T) {
	_, err := Decode(strings.NewReader("AL, 11, 2017083000\n"), DecodeOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestDecodeLine_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad number", "AL, XX, 2017083000,   , BEST,   0, 162N,  269W"},
		{"bad time", "AL, 11, 20170830,   , BEST,   0, 162N,  269W"},
		{"bad latitude", "AL, 11, 2017083000,   , BEST,   0, 162X,  269W"},
		{"bad longitude", "AL, 11, 2017083000,   , BEST,   0, 162N,  2A9W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLine(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestDecodeLine_Hemispheres(t *testing.T) {
	fix, err := DecodeLine("SH, 05, 2020011200,   , BEST,   0, 123S, 1455E,  50,  985, TS")
	require.NoError(t, err)
	assert.InDelta(t, -12.3, fix.Latitude, 1e-9)
	assert.InDelta(t, 145.5, fix.Longitude, 1e-9)
	assert.Equal(t, "TS", fix.DevelopmentLevel)
	assert.Empty(t, fix.Name)
}
