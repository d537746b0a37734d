package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the service instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Data source metrics
	DatasetFetchTotal    metric.Int64Counter
	DatasetFetchDuration metric.Float64Histogram
	DatasetCacheHits     metric.Int64Counter
	DatasetCacheMisses   metric.Int64Counter

	// Report metrics
	ReportBuildsTotal metric.Int64Counter
	ReportRows        metric.Int64Histogram
}

// CreateBusinessMetrics registers the service instruments on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests")); err != nil {
		return nil, err
	}

	if m.DatasetFetchTotal, err = meter.Int64Counter("dataset_fetch_total",
		metric.WithDescription("Upstream spreadsheet fetches by source and outcome")); err != nil {
		return nil, err
	}
	if m.DatasetFetchDuration, err = meter.Float64Histogram("dataset_fetch_duration_seconds",
		metric.WithDescription("Upstream spreadsheet fetch duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.DatasetCacheHits, err = meter.Int64Counter("dataset_cache_hits_total",
		metric.WithDescription("Dataset cache lookups served from memory")); err != nil {
		return nil, err
	}
	if m.DatasetCacheMisses, err = meter.Int64Counter("dataset_cache_misses_total",
		metric.WithDescription("Dataset cache lookups that required a fetch")); err != nil {
		return nil, err
	}

	if m.ReportBuildsTotal, err = meter.Int64Counter("report_builds_total",
		metric.WithDescription("Reports built by view and outcome")); err != nil {
		return nil, err
	}
	if m.ReportRows, err = meter.Int64Histogram("report_rows",
		metric.WithDescription("Rows per built report")); err != nil {
		return nil, err
	}

	return m, nil
}

func statusAttr(success bool) attribute.KeyValue {
	if success {
		return attribute.String("status", "success")
	}
	return attribute.String("status", "failure")
}

// RecordDatasetFetch records one upstream fetch
func RecordDatasetFetch(ctx context.Context, m *BusinessMetrics, source string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", source), statusAttr(success))
	m.DatasetFetchTotal.Add(ctx, 1, attrs)
	m.DatasetFetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheLookup records a dataset cache hit or miss
func RecordCacheLookup(ctx context.Context, m *BusinessMetrics, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.DatasetCacheHits.Add(ctx, 1)
		return
	}
	m.DatasetCacheMisses.Add(ctx, 1)
}

// RecordReportBuild records the outcome and size of one report build
func RecordReportBuild(ctx context.Context, m *BusinessMetrics, view string, rows int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("view", view), statusAttr(err == nil))
	m.ReportBuildsTotal.Add(ctx, 1, attrs)
	if err == nil {
		m.ReportRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("view", view)))
	}
}
