// Package geo serves region and comuna reference data fetched from the
// national DPA API, cached in memory for a bounded time.
package geo

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"multigremial/internal/platform/metrics"
	dErrors "multigremial/pkg/domain-errors"
)

const (
	CategoryRegiones = "regiones"
	CategoryComunas  = "comunas"

	// DefaultTTL is how long a fetched payload stays fresh.
	DefaultTTL = 24 * time.Hour
)

// FetchFunc retrieves the upstream payload for one category.
type FetchFunc func(ctx context.Context, category string) (json.RawMessage, error)

type entry struct {
	payload   json.RawMessage
	fetchedAt time.Time
}

// Cache keeps one payload per category. A stale or absent entry triggers a
// fresh fetch; fetch failures are surfaced, never papered over with stale
// data. Concurrent refreshes of the same category may fetch redundantly; the
// last write wins.
type Cache struct {
	ttl     time.Duration
	clock   func() time.Time
	fetch   FetchFunc
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	entries map[string]entry
}

type CacheOption func(*Cache)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

func WithClock(clock func() time.Time) CacheOption {
	return func(c *Cache) { c.clock = clock }
}

func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

func NewCache(fetch FetchFunc, opts ...CacheOption) *Cache {
	c := &Cache{
		ttl:     DefaultTTL,
		clock:   time.Now,
		fetch:   fetch,
		logger:  slog.Default(),
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached payload for category, refreshing it when absent or
// older than the TTL.
func (c *Cache) Get(ctx context.Context, category string) (json.RawMessage, error) {
	now := c.clock()

	c.mu.Lock()
	cached, ok := c.entries[category]
	c.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < c.ttl {
		return cached.payload, nil
	}

	payload, err := c.fetch(ctx, category)
	if err != nil {
		c.metrics.ObserveGeoFetch(category, false)
		c.logger.ErrorContext(ctx, "geo fetch failed", "category", category, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "no se pudo obtener "+category)
	}
	c.metrics.ObserveGeoFetch(category, true)

	c.mu.Lock()
	c.entries[category] = entry{payload: payload, fetchedAt: now}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "geo cache refreshed", "category", category, "bytes", len(payload))
	return payload, nil
}
