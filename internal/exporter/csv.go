package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"pidimsmart/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With("component", "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to out
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteReport writes one report with its column labels as the header row
func (w *CSVWriter) WriteReport(out io.Writer, report domain.Report) error {
	records := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		records = append(records, formatRow(report.Values(row)))
	}

	w.logger.Debug("writing report csv",
		slog.String("report", string(report.Name)),
		slog.Int("record_count", len(records)))

	return w.WriteCSV(out, WriteOptions{
		Headers:   report.Headers(),
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteReportFile writes a report to path, creating parent directories
func (w *CSVWriter) WriteReportFile(path string, report domain.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.WriteReport(file, report); err != nil {
		file.Close()
		return err
	}

	w.logger.Info("report csv written",
		slog.String("report", string(report.Name)),
		slog.String("path", path))
	return file.Close()
}

// CSVFilename is the download name of a single report export
func CSVFilename(name domain.ReportName) string {
	return fmt.Sprintf("pidim_%s.csv", name)
}
