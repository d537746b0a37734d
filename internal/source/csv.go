package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pidimsmart/internal/dataset"
	"pidimsmart/internal/infrastructure"
)

// CSVFetcher downloads the published CSV export of the sheet
type CSVFetcher struct {
	url     string
	client  *http.Client
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewCSVFetcher creates a fetcher bounded by timeout per request
func NewCSVFetcher(url string, timeout time.Duration, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *CSVFetcher {
	return &CSVFetcher{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("component", "csv_fetcher"),
		metrics: metrics,
	}
}

// Name implements Fetcher
func (f *CSVFetcher) Name() string { return "csv" }

// Fetch implements Fetcher
func (f *CSVFetcher) Fetch(ctx context.Context) (*dataset.Dataset, error) {
	return traceFetch(ctx, f.metrics, f.Name(), f.fetch)
}

func (f *CSVFetcher) fetch(ctx context.Context) (*dataset.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.ErrorContext(ctx, "csv request failed", slog.String("error", err.Error()))
		return nil, &FetchError{Source: f.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		f.logger.ErrorContext(ctx, "csv request rejected", slog.Int("status", resp.StatusCode))
		return nil, &FetchError{Source: f.Name(), StatusCode: resp.StatusCode}
	}

	ds, err := dataset.ParseCSV(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Err: fmt.Errorf("decode csv: %w", err)}
	}
	ds.Source = f.Name()

	f.logger.InfoContext(ctx, "csv dataset fetched",
		slog.Int("rows", ds.Len()),
		slog.Int("columns", ds.ColumnCount()))
	return ds, nil
}
