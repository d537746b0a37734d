package reports

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// MonthLayout is the query format of a disbursement month
const MonthLayout = "2006-01"

// ErrInvalidMonth is returned for a month that is not YYYY-MM
var ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

// DisbursementLayout locates the disbursement fields by header name
type DisbursementLayout struct {
	Date     dataset.FieldSpec
	Branch   dataset.FieldSpec
	Amount   dataset.FieldSpec
	LoanType dataset.FieldSpec
}

// DefaultDisbursementLayout returns the header candidates seen across
// revisions of the disbursement sheet.
func DefaultDisbursementLayout() DisbursementLayout {
	return DisbursementLayout{
		Date:   dataset.FieldSpec{Field: "date", Names: []string{"date"}},
		Branch: dataset.FieldSpec{Field: "branch", Names: []string{"branch", "branch_name"}},
		Amount: dataset.FieldSpec{Field: "disbursement", Names: []string{"disbursement", "loan_disbursement", "amount", "disburse"}},
		LoanType: dataset.FieldSpec{
			Field:    "loan_type",
			Names:    []string{"loan_type", "type", "enterprise_flag", "enterprise", "is_enterprise", "category"},
			Optional: true,
		},
	}
}

// ParseMonth validates a YYYY-MM month
func ParseMonth(s string) (time.Time, error) {
	m, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return m, nil
}

// DisbursementTitle returns the display title for a month
func DisbursementTitle(month time.Time) string {
	return "Branch-wise Loan Disbursement - " + month.Format("January 2006")
}

type segmentTotals struct {
	enterprise    decimal.Decimal
	nonEnterprise decimal.Decimal
	unknown       decimal.Decimal
}

func (s *segmentTotals) add(segment string, v decimal.Decimal) {
	switch segment {
	case domain.SegmentEnterprise:
		s.enterprise = s.enterprise.Add(v)
	case domain.SegmentNonEnterprise:
		s.nonEnterprise = s.nonEnterprise.Add(v)
	default:
		s.unknown = s.unknown.Add(v)
	}
}

func (s *segmentTotals) total() decimal.Decimal {
	return s.enterprise.Add(s.nonEnterprise).Add(s.unknown)
}

// Disbursement pivots one month of disbursements by branch and segment.
// Rows are sorted by Total descending. A month with no records yields an
// empty pivot, not an error.
func (b *Builder) Disbursement(ds *dataset.Dataset, month time.Time, branchFilter string) (domain.DisbursementReport, error) {
	l := b.disbursement
	cols, err := dataset.NewResolver(ds, b.logger).Resolve(l.Date, l.Branch, l.Amount, l.LoanType)
	if err != nil {
		return domain.DisbursementReport{}, err
	}
	dateCol, branchCol, amountCol := cols[l.Date.Field], cols[l.Branch.Field], cols[l.Amount.Field]
	typeCol, hasType := cols[l.LoanType.Field]

	filter := strings.ToLower(strings.TrimSpace(branchFilter))
	segments := Segments()
	byBranch := make(map[string]*segmentTotals)
	badDates := 0

	for i := range ds.Rows {
		d, ok := dataset.ParseDate(ds.Cell(i, dateCol))
		if !ok {
			badDates++
			continue
		}
		if d.Year() != month.Year() || d.Month() != month.Month() {
			continue
		}
		branch, ok := dataset.CleanBranch(ds.Cell(i, branchCol))
		if !ok {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(branch), filter) {
			continue
		}

		segment := domain.SegmentUnknown
		if hasType {
			segment, _ = segments.Classify(ds.Cell(i, typeCol))
		}

		t, ok := byBranch[branch]
		if !ok {
			t = &segmentTotals{}
			byBranch[branch] = t
		}
		t.add(segment, dataset.ParseAmount(ds.Cell(i, amountCol)))
	}

	if badDates > 0 {
		b.logger.Debug("records with unparseable dates skipped", slog.Int("count", badDates))
	}

	rows := make([]domain.DisbursementRow, 0, len(byBranch))
	grand := decimal.Zero
	for branch, t := range byBranch {
		total := t.total()
		grand = grand.Add(total)
		rows = append(rows, domain.DisbursementRow{
			Branch:        branch,
			Enterprise:    t.enterprise.InexactFloat64(),
			NonEnterprise: t.nonEnterprise.InexactFloat64(),
			Unknown:       t.unknown.InexactFloat64(),
			Total:         total.InexactFloat64(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Branch < rows[j].Branch
	})

	return domain.DisbursementReport{
		Header:     domain.DisbursementHeader{Title: DisbursementTitle(month)},
		Rows:       rows,
		GrandTotal: grand.InexactFloat64(),
		Month:      month.Format(MonthLayout),
		Branch:     strings.TrimSpace(branchFilter),
	}, nil
}

// SortedByBranch returns a copy of rows ordered by branch name
func SortedByBranch(rows []domain.DisbursementRow) []domain.DisbursementRow {
	out := make([]domain.DisbursementRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}
