package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pidimsmart/internal/dataset"
	apierrors "pidimsmart/internal/errors"
	"pidimsmart/internal/exporter"
	"pidimsmart/internal/infrastructure"
	"pidimsmart/internal/reports"
	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts/domain"
)

// TracerName identifies spans emitted by the service layer
const TracerName = "pidimsmart/services"

// DatasetProvider supplies the current dataset snapshot
type DatasetProvider interface {
	Get(ctx context.Context) (*dataset.Dataset, error)
	Refresh(ctx context.Context) (*dataset.Dataset, error)
	Stats() source.Stats
}

// ReportService builds and exports the report views
type ReportService struct {
	data    DatasetProvider
	builder *reports.Builder
	xlsx    *exporter.XLSXWriter
	csv     *exporter.CSVWriter
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(data DatasetProvider, builder *reports.Builder, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		data:    data,
		builder: builder,
		xlsx:    exporter.NewXLSXWriter(logger),
		csv:     exporter.NewCSVWriter(logger),
		metrics: metrics,
		tracer:  otel.Tracer(TracerName),
		logger:  logger.With(slog.String("component", "report_service")),
	}
}

// FixedReports builds the loan, poultry and grants views
func (s *ReportService) FixedReports(ctx context.Context) (domain.FixedReports, error) {
	ctx, span := s.tracer.Start(ctx, "reports.fixed")
	defer span.End()

	ds, err := s.dataset(ctx)
	if err != nil {
		return domain.FixedReports{}, s.fail(span, err)
	}

	fixed, err := s.builder.Fixed(ds)
	for _, name := range domain.FixedReportNames {
		r, _ := fixed.ByName(name)
		infrastructure.RecordReportBuild(ctx, s.metrics, string(name), len(r.Rows), err)
	}
	if err != nil {
		return domain.FixedReports{}, s.fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("report.loan_rows", len(fixed.Loan.Rows)),
		attribute.Int("report.poultry_rows", len(fixed.Poultry.Rows)),
		attribute.Int("report.grants_rows", len(fixed.Grants.Rows)),
	)
	s.logger.DebugContext(ctx, "fixed reports built", slog.Int("dataset_rows", ds.Len()))
	return fixed, nil
}

// Report builds a single fixed view
func (s *ReportService) Report(ctx context.Context, name domain.ReportName) (domain.Report, error) {
	parsed, ok := domain.ParseReportName(string(name))
	if !ok {
		return domain.Report{}, apierrors.NewAppValidationError("report", fmt.Sprintf("unknown report %q", name), ErrUnknownReport)
	}
	fixed, err := s.FixedReports(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	r, _ := fixed.ByName(parsed)
	return r, nil
}

// Disbursement builds the branch pivot for month (YYYY-MM), optionally
// restricted to branches containing branch.
func (s *ReportService) Disbursement(ctx context.Context, month, branch string) (domain.DisbursementReport, error) {
	ctx, span := s.tracer.Start(ctx, "reports.disbursement",
		trace.WithAttributes(
			attribute.String("report.month", month),
			attribute.String("report.branch_filter", branch),
		),
	)
	defer span.End()

	m, err := reports.ParseMonth(month)
	if err != nil {
		return domain.DisbursementReport{}, s.fail(span, err)
	}

	ds, err := s.dataset(ctx)
	if err != nil {
		return domain.DisbursementReport{}, s.fail(span, err)
	}

	rep, err := s.builder.Disbursement(ds, m, branch)
	infrastructure.RecordReportBuild(ctx, s.metrics, "disbursement", len(rep.Rows), err)
	if err != nil {
		return domain.DisbursementReport{}, s.fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("report.branches", len(rep.Rows)),
		attribute.Float64("report.grand_total", rep.GrandTotal),
	)
	return rep, nil
}

// ExportFixedExcel renders the three fixed views as one workbook
func (s *ReportService) ExportFixedExcel(ctx context.Context) ([]byte, error) {
	fixed, err := s.FixedReports(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, "xlsx", func(buf *bytes.Buffer) error {
		return s.xlsx.WriteFixedReports(buf, fixed)
	})
}

// ExportDisbursementExcel renders the month pivot as a styled workbook
func (s *ReportService) ExportDisbursementExcel(ctx context.Context, month, branch string) ([]byte, error) {
	rep, err := s.Disbursement(ctx, month, branch)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, "xlsx", func(buf *bytes.Buffer) error {
		return s.xlsx.WriteDisbursement(buf, rep)
	})
}

// ExportCSV renders one fixed view as CSV
func (s *ReportService) ExportCSV(ctx context.Context, name domain.ReportName) ([]byte, error) {
	rep, err := s.Report(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, "csv", func(buf *bytes.Buffer) error {
		return s.csv.WriteReport(buf, rep)
	})
}

// Refresh evicts the cached dataset and loads a fresh one
func (s *ReportService) Refresh(ctx context.Context) (source.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "dataset.refresh")
	defer span.End()

	start := time.Now()
	ds, err := s.data.Refresh(ctx)
	if err != nil {
		return s.data.Stats(), s.fail(span, apierrors.NewNetworkError("refresh dataset", err))
	}

	s.logger.InfoContext(ctx, "dataset refreshed",
		slog.Int("rows", ds.Len()),
		slog.Duration("duration", time.Since(start)))
	return s.data.Stats(), nil
}

// CacheStats reports the state of the dataset cache
func (s *ReportService) CacheStats() source.Stats {
	return s.data.Stats()
}

func (s *ReportService) dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return nil, apierrors.NewNetworkError("load dataset", err)
	}
	return ds, nil
}

func (s *ReportService) render(ctx context.Context, format string, write func(*bytes.Buffer) error) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "reports.export", trace.WithAttributes(attribute.String("export.format", format)))
	defer span.End()

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return nil, s.fail(span, apierrors.NewExportError(format, err))
	}
	span.SetAttributes(attribute.Int("export.bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (s *ReportService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
