package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanTypes(t *testing.T) {
	c := LoanTypes()
	tests := []struct {
		in   string
		want string
	}{
		{"Enterprise", LoanEnterprise},
		{"  ENTERPRISE loan ", LoanEnterprise},
		{"Non-Enterprise Loan", LoanNonEnterprise},
		{"non enterprise", LoanNonEnterprise},
		{"Micro", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		got, ok := c.Classify(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPoultryTypesDropsUnmatched(t *testing.T) {
	c := PoultryTypes()

	got, ok := c.Classify("Layer farming")
	assert.True(t, ok)
	assert.Equal(t, PoultryLayer, got)

	got, ok = c.Classify("BROILER")
	assert.True(t, ok)
	assert.Equal(t, PoultryBroiler, got)

	for _, s := range []string{"duck", "", "  "} {
		_, ok := c.Classify(s)
		assert.False(t, ok, s)
	}
}

func TestSegments(t *testing.T) {
	c := Segments()
	tests := []struct {
		in   string
		want string
	}{
		{"Enterprise", "Enterprise"},
		{"ENT", "Enterprise"},
		{"Non-Enterprise Loan", "Non-Enterprise"},
		{"non ent", "Non-Enterprise"},
		{"Micro", "Non-Enterprise"},
		{"Agri loan", "Non-Enterprise"},
		{"General", "Non-Enterprise"},
		{"Seasonal", "Unknown"},
		{"", "Unknown"},
	}
	for _, tt := range tests {
		got, ok := c.Classify(tt.in)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRuleWithoutTermsNeverMatches(t *testing.T) {
	c := NewClassifier("fallback", Rule{Category: "empty"})
	got, _ := c.Classify("anything")
	assert.Equal(t, "fallback", got)
}
