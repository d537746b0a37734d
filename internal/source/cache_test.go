package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pidimsmart/internal/dataset"
)

type stubFetcher struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(ctx context.Context) (*dataset.Dataset, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dataset.Dataset{
		Headers: []string{"branch"},
		Rows:    [][]string{{"fetch"}, {string(rune('0' + n))}},
	}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheReusesFreshDataset(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	f := &stubFetcher{}
	c := NewCache(f, 5*time.Minute, quietLogger(), WithClock(clock.Now))
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), first.FetchedAt)

	clock.Advance(4*time.Minute + 59*time.Second)
	second, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), f.calls.Load())

	clock.Advance(time.Second)
	third, err := c.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "dataset at exactly ttl age is stale")
	assert.Equal(t, int64(2), f.calls.Load())

	stats := c.Stats()
	assert.Equal(t, "stub", stats.Source)
	assert.True(t, stats.Cached)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(2), stats.Fetches)
	assert.Equal(t, 300.0, stats.TTLSeconds)
}

func TestCacheConcurrentMissesShareOneFetch(t *testing.T) {
	f := &stubFetcher{delay: 50 * time.Millisecond}
	c := NewCache(f, time.Minute, quietLogger())

	const workers = 20
	var wg sync.WaitGroup
	results := make([]*dataset.Dataset, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), f.calls.Load())
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestCacheRefreshForcesFetch(t *testing.T) {
	f := &stubFetcher{}
	c := NewCache(f, time.Hour, quietLogger())
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)

	refreshed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, refreshed)
	assert.Equal(t, int64(2), f.calls.Load())

	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, refreshed, again)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	upstream := &FetchError{Source: "stub", StatusCode: 503}
	f := &stubFetcher{err: upstream}
	c := NewCache(f, time.Hour, quietLogger())
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamFetch))

	stats := c.Stats()
	assert.False(t, stats.Cached)
	assert.Equal(t, int64(1), stats.Failures)

	f.err = nil
	ds, err := c.Get(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Equal(t, int64(2), f.calls.Load())
}

func TestCacheFailedRefreshKeepsNothing(t *testing.T) {
	f := &stubFetcher{}
	c := NewCache(f, time.Hour, quietLogger())
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.NoError(t, err)

	f.err = errors.New("network down")
	_, err = c.Refresh(ctx)
	require.Error(t, err)
	assert.False(t, c.Stats().Cached)
}

func TestCacheSurvivesCallerCancellation(t *testing.T) {
	f := &stubFetcher{delay: 20 * time.Millisecond}
	c := NewCache(f, time.Hour, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, err := c.Get(ctx)
	require.NoError(t, err, "stub ignores ctx; the flight runs detached")
	assert.NotNil(t, ds)
}
