package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"pidimsmart/internal/config"
)

func testTelemetry() config.TelemetryConfig {
	cfg := config.Default().Telemetry
	cfg.EnableTracing = true
	cfg.TraceExporter = "none"
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := testTelemetry()
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := testTelemetry()
	cfg.EnableTracing = false
	cfg.EnableMetrics = false
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.Meter)
	assert.Nil(t, providers.PrometheusHTTP)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := testTelemetry()
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, logger)
	assert.Error(t, err)
}

func TestTraceIDFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testTelemetry()
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := otel.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
}

func TestPrometheusEndpointExposesBusinessMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(testTelemetry(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetFetch(ctx, metrics, "csv", 120*time.Millisecond, true)
	RecordCacheLookup(ctx, metrics, true)
	RecordCacheLookup(ctx, metrics, false)
	RecordReportBuild(ctx, metrics, "loan", 6, nil)
	RecordReportBuild(ctx, metrics, "grants", 0, errors.New("boom"))

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "dataset_fetch_total")
	assert.Contains(t, text, "dataset_cache_hits_total")
	assert.Contains(t, text, "dataset_cache_misses_total")
	assert.Contains(t, text, "report_builds_total")
	assert.Contains(t, text, "go_goroutines")
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetFetch(ctx, nil, "csv", time.Second, false)
		RecordCacheLookup(ctx, nil, true)
		RecordReportBuild(ctx, nil, "loan", 1, nil)
	})
}
