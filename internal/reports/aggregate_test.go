package reports

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pidimsmart/pkg/contracts/domain"
)

func entry(branch, category string, value int64) Entry {
	return Entry{Branch: branch, Category: category, Count: 1, Value: decimal.NewFromInt(value)}
}

func TestAggregateInterleavesTotals(t *testing.T) {
	agg := Aggregator{CategoryOrder: []string{"Enterprise", "Non-Enterprise"}}

	rows := agg.Aggregate([]Entry{
		entry("BranchB", "Enterprise", 200),
		entry("BranchA", "Non-Enterprise", 500),
		entry("BranchA", "Enterprise", 1000),
	})

	want := []domain.AggregateRow{
		{Serial: 1, Branch: "BranchA", Category: "Enterprise", Count: 1, Sum: 1000, Kind: domain.RowKindData},
		{Serial: 2, Branch: "BranchA", Category: "Non-Enterprise", Count: 1, Sum: 500, Kind: domain.RowKindData},
		{Serial: 3, Branch: "BranchA Total", Count: 2, Sum: 1500, Kind: domain.RowKindSubtotal},
		{Serial: 4, Branch: "BranchB", Category: "Enterprise", Count: 1, Sum: 200, Kind: domain.RowKindData},
		{Serial: 5, Branch: "BranchB Total", Count: 1, Sum: 200, Kind: domain.RowKindSubtotal},
		{Serial: 6, Branch: "Grand Total", Count: 3, Sum: 1700, Kind: domain.RowKindGrandTotal},
	}
	assert.Equal(t, want, rows)
}

func TestAggregateUnlistedCategoriesFollow(t *testing.T) {
	agg := Aggregator{CategoryOrder: []string{"Enterprise", "Non-Enterprise"}}

	rows := agg.Aggregate([]Entry{
		entry("A", "Zeta", 1),
		entry("A", "", 1),
		entry("A", "Non-Enterprise", 1),
		entry("A", "Enterprise", 1),
	})

	var cats []string
	for _, r := range rows {
		if r.Kind == domain.RowKindData {
			cats = append(cats, r.Category)
		}
	}
	assert.Equal(t, []string{"Enterprise", "Non-Enterprise", "", "Zeta"}, cats)
}

func TestAggregateDropsPlaceholderBranches(t *testing.T) {
	agg := Aggregator{}

	rows := agg.Aggregate([]Entry{
		entry("Branch Name", "x", 10),
		entry("nan", "x", 10),
		entry("NaN Total", "x", 10),
		entry("  ", "x", 10),
		entry("Dhaka", "x", 5),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "Dhaka", rows[0].Branch)
	assert.Equal(t, "Dhaka Total", rows[1].Branch)
	assert.Equal(t, domain.GrandTotalLabel, rows[2].Branch)
	assert.Equal(t, int64(1), rows[2].Count)
	assert.Equal(t, 5.0, rows[2].Sum)
}

func TestAggregateBranchOrderIsCaseSensitive(t *testing.T) {
	rows := Aggregator{Flat: true}.Aggregate([]Entry{
		entry("barisal", "", 1),
		entry("Comilla", "", 1),
		entry("Bogura", "", 1),
	})

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Bogura", "Comilla", "barisal", "Grand Total"},
		[]string{rows[0].Branch, rows[1].Branch, rows[2].Branch, rows[3].Branch})
}

func TestAggregateEmpty(t *testing.T) {
	rows := Aggregator{}.Aggregate(nil)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.AggregateRow{Serial: 1, Branch: "Grand Total", Kind: domain.RowKindGrandTotal}, rows[0])
}

// Property checks over generated inputs.
func TestAggregateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	branches := []string{"Dhaka", "Khulna", "Sylhet", "Rangpur", "nan"}
	categories := []string{"Enterprise", "Non-Enterprise", "", "Other"}
	agg := Aggregator{CategoryOrder: []string{"Enterprise", "Non-Enterprise"}}

	for round := 0; round < 50; round++ {
		t.Run(fmt.Sprintf("round_%d", round), func(t *testing.T) {
			var entries []Entry
			for i := 0; i < rng.Intn(40); i++ {
				entries = append(entries, Entry{
					Branch:   branches[rng.Intn(len(branches))],
					Category: categories[rng.Intn(len(categories))],
					Count:    1,
					Value:    decimal.NewFromFloat(float64(rng.Intn(100000)) / 100),
				})
			}
			rows := agg.Aggregate(entries)

			for i, r := range rows {
				assert.Equal(t, i+1, r.Serial, "serials are dense")
			}

			last := rows[len(rows)-1]
			require.Equal(t, domain.RowKindGrandTotal, last.Kind)

			var subCount int64
			var subSum float64
			var catCount int64
			var catSum float64
			var currentBranch string
			lastRank := -1
			for _, r := range rows[:len(rows)-1] {
				switch r.Kind {
				case domain.RowKindData:
					if r.Branch != currentBranch {
						currentBranch = r.Branch
						lastRank = -1
						catCount, catSum = 0, 0
					}
					rank := agg.rank(r.Category)
					assert.GreaterOrEqual(t, rank, lastRank, "categories follow priority order")
					lastRank = rank
					catCount += r.Count
					catSum += r.Sum
				case domain.RowKindSubtotal:
					assert.Equal(t, currentBranch+" Total", r.Branch, "subtotal follows its branch")
					assert.Equal(t, catCount, r.Count)
					assert.InDelta(t, catSum, r.Sum, 1e-6)
					subCount += r.Count
					subSum += r.Sum
				default:
					t.Fatalf("unexpected grand total at serial %d", r.Serial)
				}
			}
			assert.Equal(t, subCount, last.Count)
			assert.InDelta(t, subSum, last.Sum, 1e-6)
		})
	}
}
