package reports

import (
	"log/slog"

	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// GrantsColumns are the display labels of the grants view
var GrantsColumns = domain.ReportColumns{
	Serial: "Sl No",
	Branch: "Branch Name",
	Count:  "Number on MEs",
	Sum:    "Amounts of Grants",
}

var grantsAggregator = Aggregator{Flat: true}

// Grants reports one row per branch. Only positive grants are counted,
// while the amount sums every record.
func (b *Builder) Grants(ds *dataset.Dataset) (domain.Report, error) {
	cols, err := dataset.NewResolver(ds, b.logger).Resolve(b.layout.Branch, b.layout.Grants)
	if err != nil {
		return domain.Report{}, err
	}
	branchCol, grantCol := cols[b.layout.Branch.Field], cols[b.layout.Grants.Field]

	entries := make([]Entry, 0, ds.Len())
	for i := range ds.Rows {
		branch, ok := dataset.CleanBranch(ds.Cell(i, branchCol))
		if !ok {
			continue
		}
		amount := dataset.ParseAmount(ds.Cell(i, grantCol))
		var count int64
		if amount.IsPositive() {
			count = 1
		}
		entries = append(entries, Entry{Branch: branch, Count: count, Value: amount})
	}

	b.logger.Debug("grant records collected", slog.Int("records", len(entries)))
	return domain.Report{
		Name:    domain.ReportGrants,
		Title:   "Grants",
		Columns: GrantsColumns,
		Rows:    grantsAggregator.Aggregate(entries),
	}, nil
}
