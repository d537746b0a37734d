package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"pidimsmart/internal/reports"
	"pidimsmart/pkg/contracts/domain"
)

// Media types and download names of the exports
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	FixedReportsFilename = "pidim_reports.xlsx"
	DisbursementFilename = "branch_disbursement.xlsx"

	DisbursementSheet = "Branch Disbursement"
)

var fixedSheets = []struct {
	name  domain.ReportName
	sheet string
}{
	{domain.ReportLoan, "Loan"},
	{domain.ReportPoultry, "Poultry"},
	{domain.ReportGrants, "Grants"},
}

// DisbursementHeaders are the column labels of the disbursement workbook
var DisbursementHeaders = []string{"Branch", domain.SegmentEnterprise, domain.SegmentNonEnterprise, domain.SegmentUnknown, "Total"}

// XLSXWriter renders reports as Excel workbooks
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an XLSXWriter
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With("component", "xlsx_writer")}
}

// WriteFixedReports writes one sheet per fixed view (Loan, Poultry, Grants)
func (w *XLSXWriter) WriteFixedReports(out io.Writer, fixed domain.FixedReports) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newFixedStyles(f)
	if err != nil {
		return err
	}

	for i, s := range fixedSheets {
		report, _ := fixed.ByName(s.name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.sheet, err)
		}
		if err := writeReportSheet(f, s.sheet, report, styles); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	w.logger.Debug("fixed reports workbook written",
		slog.Int("loan_rows", len(fixed.Loan.Rows)),
		slog.Int("poultry_rows", len(fixed.Poultry.Rows)),
		slog.Int("grants_rows", len(fixed.Grants.Rows)))
	return nil
}

type fixedStyles struct {
	header int
	total  int
}

func newFixedStyles(f *excelize.File) (fixedStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E8F3FF"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return fixedStyles{}, fmt.Errorf("header style: %w", err)
	}
	total, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fixedStyles{}, fmt.Errorf("total style: %w", err)
	}
	return fixedStyles{header: header, total: total}, nil
}

func writeReportSheet(f *excelize.File, sheet string, report domain.Report, styles fixedStyles) error {
	headers := report.Headers()
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return err
	}

	for i, row := range report.Rows {
		r := i + 2
		start, _ := excelize.CoordinatesToCellName(1, r)
		values := report.Values(row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if row.IsTotal() {
			end, _ := excelize.CoordinatesToCellName(len(values), r)
			if err := f.SetCellStyle(sheet, start, end, styles.total); err != nil {
				return err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", "A", 8); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", lastCol, 20)
}

// WriteDisbursement writes the month pivot: title in A1, header on row 3,
// one row per branch from row 4, a bold Grand Total and a segment legend.
func (w *XLSXWriter) WriteDisbursement(out io.Writer, rep domain.DisbursementReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := DisbursementSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newDisbursementStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", rep.Header.Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", st.title); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A3", &DisbursementHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A3", "E3", st.header); err != nil {
		return err
	}

	rows := reports.SortedByBranch(rep.Rows)
	row := 4
	for _, run := range branchRuns(rows) {
		first := row
		for _, d := range rows[run.start:run.end] {
			values := []interface{}{d.Enterprise, d.NonEnterprise, d.Unknown, d.Total}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("B%d", row), &values); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("E%d", row), st.number); err != nil {
				return err
			}
			row++
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", first), rows[run.start].Branch); err != nil {
			return err
		}
		if row-first > 1 {
			if err := f.MergeCell(sheet, fmt.Sprintf("A%d", first), fmt.Sprintf("A%d", row-1)); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "E", 16); err != nil {
		return err
	}

	totalRow := row + 1
	if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), domain.GrandTotalLabel); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", totalRow), rep.GrandTotal); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), st.total); err != nil {
		return err
	}

	legendRow := row + 3
	legend := []interface{}{domain.SegmentEnterprise, domain.SegmentNonEnterprise}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("B%d", legendRow), &legend); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", legendRow), fmt.Sprintf("C%d", legendRow), st.legend); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	w.logger.Debug("disbursement workbook written",
		slog.String("title", rep.Header.Title),
		slog.Int("branches", len(rows)))
	return nil
}

type disbursementStyles struct {
	title, header, number, total, legend int
}

func newDisbursementStyles(f *excelize.File) (disbursementStyles, error) {
	numFmt := "#,##0"
	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 14}},
		{
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#E8F3FF"}, Pattern: 1},
			Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
		},
		{CustomNumFmt: &numFmt},
		{
			Font:         &excelize.Font{Bold: true},
			CustomNumFmt: &numFmt,
			Border:       []excelize.Border{{Type: "top", Color: "#000000", Style: 1}},
		},
		{
			Font:      &excelize.Font{Italic: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		},
	}

	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return disbursementStyles{}, fmt.Errorf("disbursement style %d: %w", i, err)
		}
		ids[i] = id
	}
	return disbursementStyles{title: ids[0], header: ids[1], number: ids[2], total: ids[3], legend: ids[4]}, nil
}

type run struct{ start, end int }

// branchRuns groups consecutive rows with the same branch
func branchRuns(rows []domain.DisbursementRow) []run {
	var runs []run
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].Branch == rows[i].Branch {
			j++
		}
		runs = append(runs, run{start: i, end: j})
		i = j
	}
	return runs
}
