package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideDataset(n int) *Dataset {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = "col"
	}
	return &Dataset{Headers: headers}
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"A", 1},
		{"G", 7},
		{"T", 20},
		{"U", 21},
		{"Z", 26},
		{"AA", 27},
		{"AN", 40},
		{"AQ", 43},
		{"BL", 64},
		{"aq", 43},
		{" B-L ", 64},
		{"XFD", 16384},
		{"ZZZ", 18278},
	}
	for _, tt := range tests {
		got, err := ColumnIndex(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.want, got, tt.label)
	}

	_, err := ColumnIndex("12")
	assert.ErrorIs(t, err, ErrInvalidColumnLabel)
}

func TestByPositionClamps(t *testing.T) {
	r := NewResolver(wideDataset(10), nil)

	idx, err := r.ByPosition("AQ")
	require.NoError(t, err)
	assert.Equal(t, 9, idx, "AQ on a 10 column sheet resolves to the last column")

	idx, err = r.ByPosition("G")
	require.NoError(t, err)
	assert.Equal(t, 6, idx)

	wide := NewResolver(wideDataset(70), nil)
	idx, err = wide.ByPosition("BL")
	require.NoError(t, err)
	assert.Equal(t, 63, idx)

	for _, label := range []string{"XFE", "ZZZ", "ZZZZ", strings.Repeat("Z", 40)} {
		idx, err = r.ByPosition(label)
		require.NoError(t, err, label)
		assert.Equal(t, 9, idx, "%s past the sheet width resolves to the last column", label)
	}
}

func TestByPositionEmptyDataset(t *testing.T) {
	r := NewResolver(&Dataset{}, nil)
	_, err := r.ByPosition("A")
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestByName(t *testing.T) {
	ds := &Dataset{Headers: []string{"Date", " Branch_Name ", "Disbursement", "Branch"}}
	r := NewResolver(ds, nil)

	idx, ok := r.ByName("branch", "branch_name")
	require.True(t, ok)
	assert.Equal(t, 3, idx, "first candidate wins over later ones")

	idx, ok = r.ByName("BRANCH_NAME")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.ByName("amount")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	ds := &Dataset{Headers: []string{"Date", "Branch", "Amount", "Category"}}
	r := NewResolver(ds, nil)

	t.Run("names and positions", func(t *testing.T) {
		cols, err := r.Resolve(
			FieldSpec{Field: "branch", Names: []string{"branch"}},
			FieldSpec{Field: "amount", Names: []string{"disbursement"}, Position: "C"},
			FieldSpec{Field: "segment", Names: []string{"loan_type"}, Optional: true},
		)
		require.NoError(t, err)
		assert.Equal(t, 1, cols["branch"])
		assert.Equal(t, 2, cols["amount"])
		assert.False(t, cols.Has("segment"))
	})

	t.Run("missing fields are reported together", func(t *testing.T) {
		_, err := r.Resolve(
			FieldSpec{Field: "date", Names: []string{"date"}},
			FieldSpec{Field: "branch", Names: []string{"branch_code"}},
			FieldSpec{Field: "amount", Names: []string{"disbursement"}},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingColumn)

		var mc *MissingColumnError
		require.ErrorAs(t, err, &mc)
		assert.Equal(t, []string{"branch", "amount"}, mc.Fields)
		assert.Contains(t, err.Error(), "branch, amount")
	})
}
