package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pidimsmart/internal/dataset"
	"pidimsmart/internal/infrastructure"
)

const flightKey = "dataset"

// Stats is a point-in-time view of the cache
type Stats struct {
	Source     string    `json:"source"`
	Cached     bool      `json:"cached"`
	FetchedAt  time.Time `json:"fetched_at,omitempty"`
	AgeSeconds float64   `json:"age_seconds"`
	TTLSeconds float64   `json:"ttl_seconds"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Fetches    int64     `json:"fetches"`
	Failures   int64     `json:"failures"`
}

// Cache holds the latest dataset for up to ttl
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	mu       sync.RWMutex
	current  *dataset.Dataset
	hits     int64
	misses   int64
	fetches  int64
	failures int64

	group singleflight.Group
}

// CacheOption customises a Cache
type CacheOption func(*Cache)

// WithClock replaces the time source
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithMetrics records cache hits and misses
func WithMetrics(m *infrastructure.BusinessMetrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache wraps fetcher with a ttl-bounded cache
func NewCache(fetcher Fetcher, ttl time.Duration, logger *slog.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With("component", "dataset_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached dataset while it is younger than the ttl,
// fetching a new one otherwise.
func (c *Cache) Get(ctx context.Context) (*dataset.Dataset, error) {
	c.mu.Lock()
	if ds := c.freshLocked(); ds != nil {
		c.hits++
		c.mu.Unlock()
		infrastructure.RecordCacheLookup(ctx, c.metrics, true)
		return ds, nil
	}
	c.misses++
	c.mu.Unlock()
	infrastructure.RecordCacheLookup(ctx, c.metrics, false)

	return c.load(ctx)
}

// Refresh evicts the cached dataset and fetches a new one
func (c *Cache) Refresh(ctx context.Context) (*dataset.Dataset, error) {
	c.Invalidate()
	c.logger.InfoContext(ctx, "dataset cache refresh requested")
	return c.load(ctx)
}

// Invalidate drops the cached dataset
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// Stats returns counters and the age of the cached dataset
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{
		Source:     c.fetcher.Name(),
		TTLSeconds: c.ttl.Seconds(),
		Hits:       c.hits,
		Misses:     c.misses,
		Fetches:    c.fetches,
		Failures:   c.failures,
	}
	if c.current != nil {
		s.Cached = true
		s.FetchedAt = c.current.FetchedAt
		s.AgeSeconds = c.now().Sub(c.current.FetchedAt).Seconds()
	}
	return s
}

func (c *Cache) freshLocked() *dataset.Dataset {
	if c.current == nil {
		return nil
	}
	if c.now().Sub(c.current.FetchedAt) >= c.ttl {
		return nil
	}
	return c.current
}

// load runs at most one fetch at a time; concurrent callers wait for and
// share its result.
func (c *Cache) load(ctx context.Context) (*dataset.Dataset, error) {
	v, err, shared := c.group.Do(flightKey, func() (interface{}, error) {
		c.mu.RLock()
		ds := c.freshLocked()
		c.mu.RUnlock()
		if ds != nil {
			return ds, nil
		}

		// the flight outlives any single caller's cancellation
		fctx := context.WithoutCancel(ctx)
		start := c.now()
		ds, err := c.fetcher.Fetch(fctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.fetches++
		if err != nil {
			c.failures++
			c.logger.ErrorContext(ctx, "dataset fetch failed",
				slog.String("source", c.fetcher.Name()),
				slog.String("error", err.Error()))
			return nil, err
		}
		ds.FetchedAt = c.now()
		c.current = ds
		c.logger.InfoContext(ctx, "dataset cached",
			slog.String("source", c.fetcher.Name()),
			slog.Int("rows", ds.Len()),
			slog.Duration("fetch_duration", ds.FetchedAt.Sub(start)))
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight dataset fetch")
	}
	return v.(*dataset.Dataset), nil
}
