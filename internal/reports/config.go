package reports

import (
	"strings"

	"pidimsmart/internal/config"
	"pidimsmart/internal/dataset"
)

// LayoutsFromConfig maps the configured columns onto the view layouts
func LayoutsFromConfig(c config.ColumnsConfig) (Layout, DisbursementLayout) {
	layout := DefaultLayout()
	layout.Branch.Position = upper(c.Branch, layout.Branch.Position)
	layout.LoanType.Position = upper(c.LoanType, layout.LoanType.Position)
	layout.LoanAmount.Position = upper(c.LoanAmount, layout.LoanAmount.Position)
	layout.PoultryType.Position = upper(c.PoultryType, layout.PoultryType.Position)
	layout.Birds.Position = upper(c.Birds, layout.Birds.Position)
	layout.Grants.Position = upper(c.Grants, layout.Grants.Position)

	d := DefaultDisbursementLayout()
	d.Date = withNames(d.Date, c.DateNames)
	d.Branch = withNames(d.Branch, c.BranchNames)
	d.Amount = withNames(d.Amount, c.AmountNames)
	d.LoanType = withNames(d.LoanType, c.LoanTypeNames)
	return layout, d
}

func upper(v, fallback string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return fallback
	}
	return v
}

func withNames(spec dataset.FieldSpec, names []string) dataset.FieldSpec {
	if len(names) > 0 {
		spec.Names = names
	}
	return spec
}
