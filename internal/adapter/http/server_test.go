package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/storm-vortex-track/internal/adapter/http"
	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/couchcryptid/storm-vortex-track/internal/pipeline"
	"github.com/couchcryptid/storm-vortex-track/internal/track"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2018, 9, 12, 0, 0, 0, 0, time.UTC)

func fix(h int, lon, lat float64, isotach int, radius float64) domain.Fix {
	return domain.Fix{
		Basin:            "AL",
		StormNumber:      6,
		Time:             t0.Add(time.Duration(h) * time.Hour),
		RecordType:       "BEST",
		Latitude:         lat,
		Longitude:        lon,
		MaxSustainedWind: 110,
		CentralPressure:  domain.Pressure(950),
		DevelopmentLevel: "HU",
		Isotach:          isotach,
		RadiusNE:         radius,
		RadiusSE:         radius,
		RadiusSW:         radius,
		RadiusNW:         radius,
		Name:             "FLORENCE",
	}
}

func florence() domain.RecordTable {
	return domain.RecordTable{
		fix(0, -70, 30, 34, 120),
		fix(0, -70, 30, 64, 40),
		fix(6, -71, 31, 34, 120),
		fix(6, -71, 31, 64, 40),
		fix(12, -72, 32, 34, 120),
		fix(12, -72, 32, 64, 40),
	}
}

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type tableLoader struct {
	tables map[string]domain.RecordTable
	err    error
}

func (l *tableLoader) LoadTrack(ctx context.Context, job pipeline.Job) (*track.Track, error) {
	if l.err != nil {
		return nil, l.err
	}
	table, ok := l.tables[strings.ToLower(job.Storm)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdentityResolution, job.Storm)
	}
	return track.New(ctx, track.Table(table.Clone()), job.Options()...)
}

func newTestServer(readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	loader := &tableLoader{tables: map[string]domain.RecordTable{"al062018": florence()}}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, loader, 31, metrics, slog.Default()), metrics
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type feature struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("not ready yet"))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestFort22(t *testing.T) {
	srv, metrics := newTestServer(nil)
	rec := get(t, srv, "/tracks/AL062018/fort22")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "AL,  6, 2018091200"), lines[0])
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TrackRequests.WithLabelValues("fort22", "200")), 0)
}

func TestFort22_Window(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/tracks/al062018/fort22?start=2018-09-12T06:00:00Z")

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 4)
}

func TestSummary(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/tracks/al062018/summary?end_offset=-6h")

	require.Equal(t, http.StatusOK, rec.Code)
	var summary track.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "AL062018", summary.StormID)
	assert.Equal(t, "FLORENCE", summary.Name)
	assert.Equal(t, 4, summary.Fixes)
	assert.Equal(t, 2, summary.Records)
	assert.InDelta(t, 6, summary.DurationHrs, 1e-9)
}

func TestLine(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/tracks/al062018/line")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	var f feature
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "LineString", f.Geometry.Type)
	var coords [][]float64
	require.NoError(t, json.Unmarshal(f.Geometry.Coordinates, &coords))
	assert.Equal(t, [][]float64{{-70, 30}, {-71, 31}, {-72, 32}}, coords)
}

func TestIsotachs(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/tracks/al062018/isotachs?wind_speed=64")

	require.Equal(t, http.StatusOK, rec.Code)
	var fc struct {
		Type     string    `json:"type"`
		Features []feature `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Contains(t, []string{"Polygon", "MultiPolygon"}, f.Geometry.Type)
		assert.InDelta(t, 64, f.Properties["isotach"], 0)
		assert.Equal(t, "BEST", f.Properties["record_type"])
	}
	assert.Equal(t, "2018-09-12T00:00:00Z", fc.Features[0].Properties["time"])
}

func TestSwath(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/tracks/al062018/swath?isotach=34&tolerance=0.01")

	require.Equal(t, http.StatusOK, rec.Code)
	var f feature
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Contains(t, []string{"Polygon", "MultiPolygon"}, f.Geometry.Type)
	assert.Equal(t, "AL062018", f.Properties["storm_id"])
	assert.InDelta(t, 34, f.Properties["isotach"], 0)
}

func TestTrackErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown storm", "/tracks/zz992099/fort22", http.StatusNotFound},
		{"bad record type", "/tracks/al062018/fort22?record_type=XXXX", http.StatusBadRequest},
		{"start outside track", "/tracks/al062018/summary?start=2019-01-01", http.StatusBadRequest},
		{"malformed date", "/tracks/al062018/summary?start=yesterday", http.StatusBadRequest},
		{"malformed offset", "/tracks/al062018/summary?start_offset=6", http.StatusBadRequest},
		{"unsupported swath isotach", "/tracks/al062018/swath?isotach=40", http.StatusBadRequest},
		{"too few segments", "/tracks/al062018/isotachs?segments=1", http.StatusBadRequest},
		{"negative tolerance", "/tracks/al062018/swath?tolerance=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(nil)
			rec := get(t, srv, tt.target)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRetrievalFailureIsBadGateway(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	loader := &tableLoader{err: fmt.Errorf("%w: AL062018: connection refused", domain.ErrRetrieval)}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, loader, 31, metrics, slog.Default())

	rec := get(t, srv, "/tracks/al062018/summary")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.TrackRequests.WithLabelValues("summary", "502")), 0)
}

type failingProvider struct{}

func (failingProvider) Fetch(_ context.Context, req domain.FetchRequest) (domain.RecordTable, error) {
	return nil, fmt.Errorf("%w: %s unavailable", domain.ErrRetrieval, req.StormID)
}

func TestTrackRouteDoesNotReadLocalFiles(t *testing.T) {
	tr, err := track.New(context.Background(), track.Table(florence()))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bal062018.dat")
	_, err = tr.Write(path, false)
	require.NoError(t, err)

	loader := pipeline.ProviderLoader{Provider: failingProvider{}, Logger: slog.Default()}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, loader, 31, observability.NewMetricsForTesting(), slog.Default())

	rec := get(t, srv, "/tracks/"+url.PathEscape(path)+"/fort22")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "FLORENCE")
}
