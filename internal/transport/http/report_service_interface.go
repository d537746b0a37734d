package http

import (
	"context"

	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by the handlers
type ReportServiceInterface interface {
	FixedReports(ctx context.Context) (domain.FixedReports, error)
	Disbursement(ctx context.Context, month, branch string) (domain.DisbursementReport, error)
	ExportFixedExcel(ctx context.Context) ([]byte, error)
	ExportDisbursementExcel(ctx context.Context, month, branch string) ([]byte, error)
	ExportCSV(ctx context.Context, name domain.ReportName) ([]byte, error)
	Refresh(ctx context.Context) (source.Stats, error)
}
