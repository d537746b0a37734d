package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pidimsmart/internal/shared/testutil"
	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts"
)

type staticStats source.Stats

func (s staticStats) Stats() source.Stats { return source.Stats(s) }

func TestHealthService_HealthCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "", "", staticStats{}, logger)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name     string
		cache    CacheStatsProvider
		expected string
	}{
		{name: "cached dataset", cache: staticStats{Cached: true, Fetches: 1}, expected: "ready"},
		{name: "never fetched", cache: staticStats{}, expected: "ready"},
		{name: "recovered after failures", cache: staticStats{Fetches: 3, Failures: 2}, expected: "ready"},
		{name: "every fetch failed", cache: staticStats{Fetches: 2, Failures: 2}, expected: "not_ready"},
		{name: "no cache", cache: nil, expected: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("dev", "", "", tt.cache, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.expected, status.Status)
			require.Contains(t, status.Services, "data")
		})
	}
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("dev", "2026-01-01T00:00:00Z", "abc123", staticStats{}, logger)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "dev", v["version"])
	assert.Equal(t, "abc123", v["build_id"])
	assert.Equal(t, contracts.RecordFormat, v["record_format"])
	assert.Equal(t, "2026-01-01T00:00:00Z", v["build_time"])
}
