package reports

import (
	"fmt"
	"log/slog"

	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// Layout locates the fields of the fixed views in the published sheet
type Layout struct {
	Branch      dataset.FieldSpec
	LoanType    dataset.FieldSpec
	LoanAmount  dataset.FieldSpec
	PoultryType dataset.FieldSpec
	Birds       dataset.FieldSpec
	Grants      dataset.FieldSpec
}

// DefaultLayout returns the column letters of the current sheet revision
func DefaultLayout() Layout {
	return Layout{
		Branch:      dataset.FieldSpec{Field: "branch", Position: "G"},
		LoanType:    dataset.FieldSpec{Field: "loan_type", Position: "AN"},
		LoanAmount:  dataset.FieldSpec{Field: "loan_amount", Position: "AQ"},
		PoultryType: dataset.FieldSpec{Field: "poultry_type", Position: "T"},
		Birds:       dataset.FieldSpec{Field: "birds", Position: "U"},
		Grants:      dataset.FieldSpec{Field: "grants", Position: "BL"},
	}
}

// Builder assembles the report views from a dataset
type Builder struct {
	layout       Layout
	disbursement DisbursementLayout
	logger       *slog.Logger
}

// NewBuilder creates a Builder for the given column layouts
func NewBuilder(layout Layout, disbursement DisbursementLayout, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		layout:       layout,
		disbursement: disbursement,
		logger:       logger.With("component", "report_builder"),
	}
}

// Fixed builds the loan, poultry and grants views from one dataset
func (b *Builder) Fixed(ds *dataset.Dataset) (domain.FixedReports, error) {
	loan, err := b.Loan(ds)
	if err != nil {
		return domain.FixedReports{}, fmt.Errorf("loan report: %w", err)
	}
	poultry, err := b.Poultry(ds)
	if err != nil {
		return domain.FixedReports{}, fmt.Errorf("poultry report: %w", err)
	}
	grants, err := b.Grants(ds)
	if err != nil {
		return domain.FixedReports{}, fmt.Errorf("grants report: %w", err)
	}
	return domain.FixedReports{Loan: loan, Poultry: poultry, Grants: grants}, nil
}

// groupedView runs the shared resolve, classify and aggregate pipeline for
// views keyed by branch and one categorised column.
func (b *Builder) groupedView(ds *dataset.Dataset, category, value dataset.FieldSpec, classifier *Classifier) ([]Entry, error) {
	cols, err := dataset.NewResolver(ds, b.logger).Resolve(b.layout.Branch, category, value)
	if err != nil {
		return nil, err
	}
	branchCol, categoryCol, valueCol := cols[b.layout.Branch.Field], cols[category.Field], cols[value.Field]

	entries := make([]Entry, 0, ds.Len())
	dropped := 0
	for i := range ds.Rows {
		branch, ok := dataset.CleanBranch(ds.Cell(i, branchCol))
		if !ok {
			dropped++
			continue
		}
		cat, ok := classifier.Classify(ds.Cell(i, categoryCol))
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, Entry{
			Branch:   branch,
			Category: cat,
			Count:    1,
			Value:    dataset.ParseAmount(ds.Cell(i, valueCol)),
		})
	}

	b.logger.Debug("records classified",
		slog.String("field", category.Field),
		slog.Int("kept", len(entries)),
		slog.Int("dropped", dropped))
	return entries, nil
}
