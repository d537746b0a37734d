package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pidimsmart/internal/dataset"
	apierrors "pidimsmart/internal/errors"
	"pidimsmart/internal/reports"
	"pidimsmart/internal/shared/testutil"
	"pidimsmart/internal/source"
	"pidimsmart/pkg/contracts/domain"
)

func newTestService(t *testing.T, data DatasetProvider) *ReportService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	builder := reports.NewBuilder(reports.DefaultLayout(), reports.DefaultDisbursementLayout(), logger)
	return NewReportService(data, builder, nil, logger)
}

func loanSheet(t *testing.T) *testutil.SheetFixture {
	return testutil.NewSheetFixture(t).
		Loan("Dhaka", "Enterprise", "1000").
		Loan("Dhaka", "Non-Enterprise Loan", "500").
		Loan("Khulna", "Enterprise", "200").
		Poultry("Dhaka", "Layer", "300").
		Grant("Khulna", "500")
}

func TestReportService_FixedReports(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, loanSheet(t)), nil).Once()

	fixed, err := newTestService(t, data).FixedReports(context.Background())
	require.NoError(t, err)
	data.AssertExpectations(t)

	require.NotEmpty(t, fixed.Loan.Rows)
	grand := fixed.Loan.Rows[len(fixed.Loan.Rows)-1]
	assert.Equal(t, domain.GrandTotalLabel, grand.Branch)
	assert.Equal(t, domain.ReportPoultry, fixed.Poultry.Name)
	assert.Equal(t, domain.ReportGrants, fixed.Grants.Name)
}

func TestReportService_FixedReportsUpstreamFailure(t *testing.T) {
	upstream := &source.FetchError{Source: "csv", StatusCode: 500}
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(nil, upstream)

	_, err := newTestService(t, data).FixedReports(context.Background())
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeNetwork, appErr.Type)
	assert.ErrorIs(t, err, source.ErrUpstreamFetch)
}

func TestReportService_FixedReportsEmptyDataset(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(&dataset.Dataset{}, nil)

	_, err := newTestService(t, data).FixedReports(context.Background())
	assert.ErrorIs(t, err, dataset.ErrEmptyDataset)
}

func TestReportService_DisbursementMissingColumn(t *testing.T) {
	ds := &dataset.Dataset{Headers: []string{"Branch", "Notes"}}
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(ds, nil)

	_, err := newTestService(t, data).Disbursement(context.Background(), "2024-03", "")
	var missing *dataset.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"date", "disbursement"}, missing.Fields)
}

func TestReportService_Report(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, loanSheet(t)), nil)
	svc := newTestService(t, data)

	rep, err := svc.Report(context.Background(), "Grants")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportGrants, rep.Name)

	_, err = svc.Report(context.Background(), "savings")
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
	assert.Equal(t, "report", appErr.Field)
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func disbursementSheet(t *testing.T) *testutil.SheetFixture {
	return testutil.NewSheetFixture(t).
		Disbursement("2024-03-05", "Rangpur", "5,000", "Enterprise").
		Disbursement("2024-03-20", "Bogura", "2000", "Non Enterprise").
		Disbursement("2024-04-01", "Bogura", "9999", "Enterprise")
}

func TestReportService_Disbursement(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, disbursementSheet(t)), nil)
	svc := newTestService(t, data)

	rep, err := svc.Disbursement(context.Background(), "2024-03", "")
	require.NoError(t, err)
	assert.Equal(t, "Branch-wise Loan Disbursement - March 2024", rep.Header.Title)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "Rangpur", rep.Rows[0].Branch)
	assert.InDelta(t, 7000, rep.GrandTotal, 0.001)

	rep, err = svc.Disbursement(context.Background(), "2024-03", "bog")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Bogura", rep.Rows[0].Branch)
}

func TestReportService_DisbursementInvalidMonth(t *testing.T) {
	data := new(MockDatasetProvider)
	_, err := newTestService(t, data).Disbursement(context.Background(), "March", "")
	assert.ErrorIs(t, err, reports.ErrInvalidMonth)
	data.AssertNotCalled(t, "Get", mock.Anything)
}

func TestReportService_ExportFixedExcel(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, loanSheet(t)), nil)

	out, err := newTestService(t, data).ExportFixedExcel(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Loan", "Poultry", "Grants"}, f.GetSheetList())
}

func TestReportService_ExportDisbursementExcel(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, disbursementSheet(t)), nil)

	out, err := newTestService(t, data).ExportDisbursementExcel(context.Background(), "2024-03", "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	title, err := f.GetCellValue("Branch Disbursement", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Branch-wise Loan Disbursement - March 2024", title)
}

func TestReportService_ExportCSV(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Get", mock.Anything).Return(fixtureDataset(t, loanSheet(t)), nil)

	out, err := newTestService(t, data).ExportCSV(context.Background(), domain.ReportLoan)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("\xef\xbb\xbf")))

	records, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, reports.LoanColumns.Serial, records[0][0])
	assert.Equal(t, domain.GrandTotalLabel, records[len(records)-1][1])
}

func TestReportService_Refresh(t *testing.T) {
	stats := source.Stats{Source: "csv", Cached: true, Fetches: 2}
	data := new(MockDatasetProvider)
	data.On("Refresh", mock.Anything).Return(fixtureDataset(t, loanSheet(t)), nil).Once()
	data.On("Stats").Return(stats)

	got, err := newTestService(t, data).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, got)
	data.AssertExpectations(t)
}

func TestReportService_RefreshFailure(t *testing.T) {
	data := new(MockDatasetProvider)
	data.On("Refresh", mock.Anything).Return(nil, errors.Join(source.ErrUpstreamFetch, errors.New("dial tcp: timeout")))
	data.On("Stats").Return(source.Stats{Source: "csv", Fetches: 1, Failures: 1})

	stats, err := newTestService(t, data).Refresh(context.Background())
	assert.ErrorIs(t, err, source.ErrUpstreamFetch)
	assert.Equal(t, int64(1), stats.Failures)
}
