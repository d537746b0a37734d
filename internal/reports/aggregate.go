package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pidimsmart/internal/dataset"
	"pidimsmart/pkg/contracts/domain"
)

// Entry is one cleaned record projected onto a view
type Entry struct {
	Branch   string
	Category string
	Count    int64
	Value    decimal.Decimal
}

// Aggregator groups entries into an ordered report body
type Aggregator struct {
	// CategoryOrder ranks categories inside a branch; unlisted ones follow
	// in alphabetical order.
	CategoryOrder []string

	// Flat emits one row per branch with no subtotal rows.
	Flat bool
}

type bucket struct {
	count int64
	sum   decimal.Decimal
}

// Aggregate groups entries by branch and category, interleaves subtotal
// rows, appends the grand total and assigns serial numbers.
func (a Aggregator) Aggregate(entries []Entry) []domain.AggregateRow {
	groups := make(map[string]map[string]*bucket)
	for _, e := range entries {
		branch, ok := dataset.CleanBranch(e.Branch)
		if !ok || isSyntheticBranch(branch) {
			continue
		}
		category := e.Category
		if a.Flat {
			category = ""
		}
		cats, ok := groups[branch]
		if !ok {
			cats = make(map[string]*bucket)
			groups[branch] = cats
		}
		b, ok := cats[category]
		if !ok {
			b = &bucket{}
			cats[category] = b
		}
		b.count += e.Count
		b.sum = b.sum.Add(e.Value)
	}

	branches := make([]string, 0, len(groups))
	for branch := range groups {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	rows := make([]domain.AggregateRow, 0, len(branches)*3+1)
	var grandCount int64
	grandSum := decimal.Zero

	for _, branch := range branches {
		cats := groups[branch]
		var branchCount int64
		branchSum := decimal.Zero

		for _, category := range a.sortCategories(cats) {
			b := cats[category]
			rows = append(rows, domain.AggregateRow{
				Branch:   branch,
				Category: category,
				Count:    b.count,
				Sum:      b.sum.InexactFloat64(),
				Kind:     domain.RowKindData,
			})
			branchCount += b.count
			branchSum = branchSum.Add(b.sum)
		}

		if !a.Flat {
			rows = append(rows, domain.AggregateRow{
				Branch: branch + domain.SubtotalSuffix,
				Count:  branchCount,
				Sum:    branchSum.InexactFloat64(),
				Kind:   domain.RowKindSubtotal,
			})
		}
		grandCount += branchCount
		grandSum = grandSum.Add(branchSum)
	}

	rows = append(rows, domain.AggregateRow{
		Branch: domain.GrandTotalLabel,
		Count:  grandCount,
		Sum:    grandSum.InexactFloat64(),
		Kind:   domain.RowKindGrandTotal,
	})

	for i := range rows {
		rows[i].Serial = i + 1
	}
	return rows
}

func (a Aggregator) sortCategories(cats map[string]*bucket) []string {
	keys := make([]string, 0, len(cats))
	for k := range cats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := a.rank(keys[i]), a.rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (a Aggregator) rank(category string) int {
	for i, c := range a.CategoryOrder {
		if c == category {
			return i
		}
	}
	return len(a.CategoryOrder)
}

// isSyntheticBranch catches header echoes and stringified nulls that
// survive as branch values in the published sheet.
func isSyntheticBranch(branch string) bool {
	switch strings.ToLower(strings.TrimSpace(branch)) {
	case "branch name", "nan", "nan total":
		return true
	}
	return false
}
