package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts"
)

// CacheStatsProvider exposes the dataset cache state
type CacheStatsProvider interface {
	Stats() source.Stats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	cache     CacheStatsProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Cache   *source.Stats `json:"cache,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime, buildID string, cache CacheStatsProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		cache:     cache,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports the dataset cache. A service that has never loaded
// the sheet is still ready; only a cache whose every fetch failed is not.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDataHealth()
	status.Services["data"] = data
	if data.Status != "ready" {
		status.Status = "not_ready"
	}

	hs.logger.DebugContext(ctx, "readiness check", slog.String("status", status.Status))
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":       hs.version,
		"record_format": contracts.RecordFormat,
		"go_version":    runtime.Version(),
		"os":            runtime.GOOS,
		"arch":          runtime.GOARCH,
		"uptime":        time.Since(hs.startTime).Seconds(),
		"start_time":    hs.startTime.Format(time.RFC3339),
		"current_time":  time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.cache == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "dataset cache not initialized",
		}
	}

	stats := hs.cache.Stats()
	switch {
	case stats.Cached:
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("dataset cached %.0fs ago", stats.AgeSeconds),
			Cache:   &stats,
		}
	case stats.Fetches > 0 && stats.Failures == stats.Fetches:
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("all %d dataset fetches failed", stats.Fetches),
			Cache:   &stats,
		}
	default:
		return ServiceHealth{
			Status:  "ready",
			Message: "dataset will be fetched on first request",
			Cache:   &stats,
		}
	}
}
