package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pidimsmart/internal/config"
	"pidimsmart/internal/dataset"
	"pidimsmart/internal/infrastructure"
)

// TracerName identifies spans emitted by this package
const TracerName = "pidimsmart/source"

// Fetcher retrieves a complete snapshot of the spreadsheet
type Fetcher interface {
	Fetch(ctx context.Context) (*dataset.Dataset, error)
	Name() string
}

// traceFetch wraps a fetch with a span and the dataset fetch metrics
func traceFetch(ctx context.Context, metrics *infrastructure.BusinessMetrics, kind string, fn func(ctx context.Context) (*dataset.Dataset, error)) (*dataset.Dataset, error) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "source.fetch."+kind,
		trace.WithAttributes(
			attribute.String("source.kind", kind),
			attribute.String("component", "data_source"),
		),
	)
	defer span.End()

	start := time.Now()
	ds, err := fn(ctx)
	duration := time.Since(start)

	infrastructure.RecordDatasetFetch(ctx, metrics, kind, duration, err == nil)

	span.SetAttributes(attribute.Float64("source.duration_ms", float64(duration.Milliseconds())))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("dataset.rows", ds.Len()),
		attribute.Int("dataset.columns", ds.ColumnCount()),
	)
	span.SetStatus(codes.Ok, "")
	return ds, nil
}

// NewFetcher builds the fetcher selected by cfg.Kind
func NewFetcher(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (Fetcher, error) {
	switch cfg.Kind {
	case "", config.SourceCSV:
		return NewCSVFetcher(cfg.CSVURL, cfg.FetchTimeout, logger, metrics), nil
	case config.SourceSheets:
		f, err := NewSheetsFetcher(ctx, SheetsOptions{
			SpreadsheetID:   cfg.SpreadsheetID,
			Range:           cfg.Range,
			APIKey:          cfg.APIKey,
			CredentialsFile: cfg.CredentialsFile,
		}, logger, metrics)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
