package reports

import (
	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// LoanColumns are the display labels of the loan view
var LoanColumns = domain.ReportColumns{
	Serial:   "Sl No",
	Branch:   "Branch Name",
	Category: "Types of Loan",
	Count:    "# of Loan",
	Sum:      "Amount of Loan",
}

var loanAggregator = Aggregator{CategoryOrder: []string{LoanEnterprise, LoanNonEnterprise}}

// Loan counts loans and sums loan amounts per branch and loan type
func (b *Builder) Loan(ds *dataset.Dataset) (domain.Report, error) {
	entries, err := b.groupedView(ds, b.layout.LoanType, b.layout.LoanAmount, LoanTypes())
	if err != nil {
		return domain.Report{}, err
	}
	return domain.Report{
		Name:    domain.ReportLoan,
		Title:   "Loan",
		Columns: LoanColumns,
		Rows:    loanAggregator.Aggregate(entries),
	}, nil
}
