package nhc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	fetchCalls   int
	resolveCalls int
	err          error
}

func (m *countingSource) Fetch(_ context.Context, req domain.FetchRequest) (domain.RecordTable, error) {
	m.fetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	return domain.RecordTable{{
		Basin:       req.StormID.Basin,
		StormNumber: req.StormID.Number,
		Time:        time.Date(req.StormID.Year, 9, 11, 0, 0, 0, 0, time.UTC),
		RecordType:  "BEST",
		Latitude:    25,
		Longitude:   -60,
	}}, nil
}

func (m *countingSource) Resolve(_ context.Context, name string, year int) (domain.StormID, error) {
	m.resolveCalls++
	if name != "florence" && name != "FLORENCE" {
		return domain.StormID{}, domain.ErrIdentityResolution
	}
	return domain.StormID{Basin: "AL", Number: 6, Year: year}, nil
}

func newCached(t *testing.T, inner Source, size int, clock clockwork.Clock) (*CachedProvider, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	c, err := NewCachedProvider(inner, size, 15*time.Minute, clock, metrics)
	require.NoError(t, err)
	return c, metrics
}

// --- CachedProvider tests ---

func TestCachedProvider_HistoricalHit(t *testing.T) {
	inner := &countingSource{}
	c, metrics := newCached(t, inner, 10, clockwork.NewFakeClock())
	req := domain.FetchRequest{StormID: florence, Deck: domain.FileDeckB, Mode: domain.ModeHistorical}

	_, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.fetchCalls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("miss")))
}

func TestCachedProvider_ReturnsCopies(t *testing.T) {
	c, _ := newCached(t, &countingSource{}, 10, clockwork.NewFakeClock())
	req := domain.FetchRequest{StormID: florence, Deck: domain.FileDeckB}

	first, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	first[0].Longitude = 0

	second, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, -60, second[0].Longitude, 1e-9)
}

func TestCachedProvider_RealtimeExpires(t *testing.T) {
	inner := &countingSource{}
	clock := clockwork.NewFakeClock()
	c, metrics := newCached(t, inner, 10, clock)
	req := domain.FetchRequest{StormID: florence, Deck: domain.FileDeckB, Mode: domain.ModeRealtime}

	_, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.fetchCalls)

	clock.Advance(6 * time.Minute)
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.fetchCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("expired")))
}

func TestCachedProvider_HistoricalDoesNotExpire(t *testing.T) {
	inner := &countingSource{}
	clock := clockwork.NewFakeClock()
	c, _ := newCached(t, inner, 10, clock)
	req := domain.FetchRequest{StormID: florence, Deck: domain.FileDeckA, Mode: domain.ModeHistorical}

	_, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.fetchCalls)
}

func TestCachedProvider_Eviction(t *testing.T) {
	inner := &countingSource{}
	c, _ := newCached(t, inner, 2, clockwork.NewFakeClock())
	ctx := context.Background()

	reqs := []domain.FetchRequest{
		{StormID: domain.StormID{Basin: "AL", Number: 1, Year: 2018}, Deck: domain.FileDeckB},
		{StormID: domain.StormID{Basin: "AL", Number: 2, Year: 2018}, Deck: domain.FileDeckB},
		{StormID: domain.StormID{Basin: "AL", Number: 3, Year: 2018}, Deck: domain.FileDeckB},
	}
	for _, req := range reqs {
		_, err := c.Fetch(ctx, req)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	_, err := c.Fetch(ctx, reqs[0])
	require.NoError(t, err)
	assert.Equal(t, 4, inner.fetchCalls, "least recently used entry was evicted")
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingSource{err: errors.Join(domain.ErrRetrieval, errors.New("timeout"))}
	c, _ := newCached(t, inner, 10, clockwork.NewFakeClock())
	req := domain.FetchRequest{StormID: florence, Deck: domain.FileDeckB}

	_, err := c.Fetch(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrRetrieval)

	inner.err = nil
	_, err = c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.fetchCalls)
}

func TestCachedProvider_Resolve(t *testing.T) {
	inner := &countingSource{}
	c, _ := newCached(t, inner, 10, clockwork.NewFakeClock())
	ctx := context.Background()

	id, err := c.Resolve(ctx, "florence", 2018)
	require.NoError(t, err)
	assert.Equal(t, florence, id)
	_, err = c.Resolve(ctx, "FLORENCE", 2018)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.resolveCalls, "lookups are case-insensitive")

	_, err = c.Resolve(ctx, "nobody", 2018)
	require.ErrorIs(t, err, domain.ErrIdentityResolution)
	_, err = c.Resolve(ctx, "nobody", 2018)
	require.ErrorIs(t, err, domain.ErrIdentityResolution)
	assert.Equal(t, 3, inner.resolveCalls, "misses are not cached")
}

func TestNewCachedProvider_InvalidSize(t *testing.T) {
	_, err := NewCachedProvider(&countingSource{}, 0, time.Minute, clockwork.NewRealClock(), observability.NewMetricsForTesting())
	assert.Error(t, err)
}
