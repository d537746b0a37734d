package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"pidimsmart/internal/dataset"
	"pidimsmart/internal/infrastructure"
)

// SheetsOptions configures access to the spreadsheet through the Sheets API.
// APIKey works for link-shared sheets; CredentialsFile is a service account
// key for private ones.
type SheetsOptions struct {
	SpreadsheetID   string
	Range           string
	APIKey          string
	CredentialsFile string

	// ClientOptions are appended after the credential options.
	ClientOptions []option.ClientOption
}

// SheetsFetcher reads one value range of a spreadsheet
type SheetsFetcher struct {
	service       *sheets.Service
	spreadsheetID string
	valueRange    string
	logger        *slog.Logger
	metrics       *infrastructure.BusinessMetrics
}

// NewSheetsFetcher creates the Sheets API client
func NewSheetsFetcher(ctx context.Context, opts SheetsOptions, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*SheetsFetcher, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}

	var clientOpts []option.ClientOption
	switch {
	case opts.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile), option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	case opts.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsFetcher{
		service:       service,
		spreadsheetID: opts.SpreadsheetID,
		valueRange:    opts.Range,
		logger:        logger.With("component", "sheets_fetcher"),
		metrics:       metrics,
	}, nil
}

// Name implements Fetcher
func (f *SheetsFetcher) Name() string { return "sheets" }

// Fetch implements Fetcher
func (f *SheetsFetcher) Fetch(ctx context.Context) (*dataset.Dataset, error) {
	return traceFetch(ctx, f.metrics, f.Name(), f.fetch)
}

func (f *SheetsFetcher) fetch(ctx context.Context) (*dataset.Dataset, error) {
	resp, err := f.service.Spreadsheets.Values.Get(f.spreadsheetID, f.valueRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		f.logger.ErrorContext(ctx, "sheets request failed",
			slog.String("spreadsheet_id", f.spreadsheetID),
			slog.String("range", f.valueRange),
			slog.String("error", err.Error()))

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, &FetchError{Source: f.Name(), StatusCode: apiErr.Code, Err: err}
		}
		return nil, &FetchError{Source: f.Name(), Err: err}
	}

	ds, err := dataset.FromValues(resp.Values)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Err: fmt.Errorf("decode values: %w", err)}
	}
	ds.Source = f.Name()

	f.logger.InfoContext(ctx, "sheets dataset fetched",
		slog.String("range", resp.Range),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", ds.ColumnCount()))
	return ds, nil
}
