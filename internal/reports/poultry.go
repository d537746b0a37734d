package reports

import (
	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// PoultryColumns are the display labels of the poultry view
var PoultryColumns = domain.ReportColumns{
	Serial:   "Sl No",
	Branch:   "Branch Name",
	Category: "Types of Poultry Rearing",
	Count:    "# of MEs",
	Sum:      "# of Birds",
}

var poultryAggregator = Aggregator{CategoryOrder: []string{PoultryLayer, PoultryBroiler}}

// Poultry counts enterprises and sums birds per branch and rearing type.
// Records that are neither layer nor broiler rearing are left out.
func (b *Builder) Poultry(ds *dataset.Dataset) (domain.Report, error) {
	entries, err := b.groupedView(ds, b.layout.PoultryType, b.layout.Birds, PoultryTypes())
	if err != nil {
		return domain.Report{}, err
	}
	return domain.Report{
		Name:    domain.ReportPoultry,
		Title:   "Poultry",
		Columns: PoultryColumns,
		Rows:    poultryAggregator.Aggregate(entries),
	}, nil
}
