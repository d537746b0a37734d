// Command reportgen builds the PIDIM SMART reports once and writes them to
// disk. It reads a local CSV export when -csv is given and the configured
// sheet otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"pidimsmart/internal/config"
	"pidimsmart/internal/dataset"
	apperrors "pidimsmart/internal/errors"
	"pidimsmart/internal/exporter"
	"pidimsmart/internal/infrastructure"
	"pidimsmart/internal/reports"
	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts"
	"pidimsmart/pkg/contracts/domain"
)

type options struct {
	csvPath  string
	outDir   string
	month    string
	branch   string
	logLevel string
	version  bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if opts.version {
		fmt.Println(contracts.VersionString("reportgen"))
		return
	}

	logger := infrastructure.NewTextLogger(os.Stderr, opts.logLevel)
	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reportgen", flag.ContinueOnError)
	fs.StringVar(&opts.csvPath, "csv", "", "local CSV export of the sheet (defaults to the configured source)")
	fs.StringVar(&opts.outDir, "out", "reports", "output directory")
	fs.StringVar(&opts.month, "month", "", "also write the branch disbursement pivot for YYYY-MM")
	fs.StringVar(&opts.branch, "branch", "", "branch filter for the disbursement pivot")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return apperrors.NewConfigError("load configuration", err)
	}

	ds, err := loadDataset(ctx, opts.csvPath, cfg.Source, logger)
	if err != nil {
		return err
	}
	logger.Info("Loaded dataset",
		slog.String("source", ds.Source),
		slog.Int("rows", ds.Len()),
		slog.Int("columns", ds.ColumnCount()))

	layout, disbursement := reports.LayoutsFromConfig(cfg.Columns)
	builder := reports.NewBuilder(layout, disbursement, logger)

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return apperrors.NewExportError("create output directory", err)
	}

	fixed, err := builder.Fixed(ds)
	if err != nil {
		return apperrors.NewParsingError("build fixed reports", err)
	}

	csvWriter := exporter.NewCSVWriter(logger)
	for _, name := range domain.FixedReportNames {
		report, _ := fixed.ByName(name)
		path := filepath.Join(opts.outDir, exporter.CSVFilename(name))
		if err := csvWriter.WriteReportFile(path, report); err != nil {
			return apperrors.NewExportError("write "+string(name)+" csv", err)
		}
		logger.Info("Wrote report", slog.String("report", string(name)), slog.String("path", path), slog.Int("rows", len(report.Rows)))
	}

	xlsx := exporter.NewXLSXWriter(logger)
	err = writeFile(filepath.Join(opts.outDir, exporter.FixedReportsFilename), func(w io.Writer) error {
		return xlsx.WriteFixedReports(w, fixed)
	})
	if err != nil {
		return apperrors.NewExportError("write fixed reports workbook", err)
	}

	if opts.month == "" {
		return nil
	}

	month, err := reports.ParseMonth(opts.month)
	if err != nil {
		return apperrors.NewAppValidationError("month", "must be YYYY-MM", err)
	}
	rep, err := builder.Disbursement(ds, month, opts.branch)
	if err != nil {
		return apperrors.NewParsingError("build disbursement pivot", err)
	}
	path := filepath.Join(opts.outDir, exporter.DisbursementFilename)
	if err := writeFile(path, func(w io.Writer) error { return xlsx.WriteDisbursement(w, rep) }); err != nil {
		return apperrors.NewExportError("write disbursement workbook", err)
	}
	logger.Info("Wrote disbursement pivot",
		slog.String("month", rep.Month),
		slog.Int("branches", len(rep.Rows)),
		slog.Float64("grand_total", rep.GrandTotal),
		slog.String("path", path))
	return nil
}

func loadDataset(ctx context.Context, csvPath string, cfg config.SourceConfig, logger *slog.Logger) (*dataset.Dataset, error) {
	if csvPath == "" {
		fetcher, err := source.NewFetcher(ctx, cfg, logger, nil)
		if err != nil {
			return nil, apperrors.NewConfigError("data source", err)
		}
		ds, err := fetcher.Fetch(ctx)
		if err != nil {
			return nil, apperrors.NewNetworkError("fetch sheet", err)
		}
		return ds, nil
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("open %s", csvPath), err)
	}
	defer f.Close()

	ds, err := dataset.ParseCSV(f)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("parse %s", csvPath), err)
	}
	ds.Source = "file"
	return ds, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
