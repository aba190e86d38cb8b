package nhc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
	"github.com/couchcryptid/storm-vortex-track/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

// Source is what CachedProvider decorates.
type Source interface {
	domain.Provider
	domain.Resolver
}

type cachedDeck struct {
	table   domain.RecordTable
	fetched time.Time
}

type nameKey struct {
	name string
	year int
}

// CachedProvider wraps a Source with in-memory LRU caches. Historical decks
// stay until evicted; realtime decks expire after ttl since they are still
// being appended to.
type CachedProvider struct {
	inner   Source
	decks   *lru.Cache[domain.FetchRequest, cachedDeck]
	names   *lru.Cache[nameKey, domain.StormID]
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner Source, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) (*CachedProvider, error) {
	decks, err := lru.New[domain.FetchRequest, cachedDeck](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("deck cache: %w", err)
	}
	names, err := lru.New[nameKey, domain.StormID](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("name cache: %w", err)
	}
	return &CachedProvider{
		inner:   inner,
		decks:   decks,
		names:   names,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}, nil
}

// Fetch returns a copy of the cached deck, downloading it on a miss.
func (c *CachedProvider) Fetch(ctx context.Context, req domain.FetchRequest) (domain.RecordTable, error) {
	if entry, ok := c.decks.Get(req); ok {
		if req.Mode != domain.ModeRealtime || c.clock.Since(entry.fetched) < c.ttl {
			c.metrics.FetchCache.WithLabelValues("hit").Inc()
			return entry.table.Clone(), nil
		}
		c.decks.Remove(req)
		c.metrics.FetchCache.WithLabelValues("expired").Inc()
	} else {
		c.metrics.FetchCache.WithLabelValues("miss").Inc()
	}

	table, err := c.inner.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	// Only successful downloads are cached so failures can be retried.
	c.decks.Add(req, cachedDeck{table: table.Clone(), fetched: c.clock.Now()})
	return table, nil
}

// Resolve caches successful name lookups.
func (c *CachedProvider) Resolve(ctx context.Context, name string, year int) (domain.StormID, error) {
	key := nameKey{name: strings.ToUpper(strings.TrimSpace(name)), year: year}
	if id, ok := c.names.Get(key); ok {
		return id, nil
	}
	id, err := c.inner.Resolve(ctx, name, year)
	if err != nil {
		return id, err
	}
	c.names.Add(key, id)
	return id, nil
}

// Len is the number of cached decks.
func (c *CachedProvider) Len() int {
	return c.decks.Len()
}
