package reports

import (
	"strings"

	"pidimsmart/pkg/contracts/domain"
)

// Rule maps free text to a category. Every AllOf term must occur in the
// text and, when AnyOf is set, at least one of its terms must too.
type Rule struct {
	Category string
	AllOf    []string
	AnyOf    []string
}

func (r Rule) matches(text string) bool {
	if len(r.AllOf) == 0 && len(r.AnyOf) == 0 {
		return false
	}
	for _, term := range r.AllOf {
		if !strings.Contains(text, term) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, term := range r.AnyOf {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Classifier applies an ordered rule list; the first match wins
type Classifier struct {
	rules         []Rule
	fallback      string
	dropUnmatched bool
}

// NewClassifier returns a classifier that maps unmatched text to fallback
func NewClassifier(fallback string, rules ...Rule) *Classifier {
	return &Classifier{rules: rules, fallback: fallback}
}

// NewDroppingClassifier returns a classifier that rejects unmatched text
func NewDroppingClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules, dropUnmatched: true}
}

// Classify returns the category of text. ok is false only when the
// classifier drops unmatched values.
func (c *Classifier) Classify(text string) (category string, ok bool) {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm != "" {
		for _, r := range c.rules {
			if r.matches(norm) {
				return r.Category, true
			}
		}
	}
	if c.dropUnmatched {
		return "", false
	}
	return c.fallback, true
}

// Loan type categories
const (
	LoanEnterprise    = domain.SegmentEnterprise
	LoanNonEnterprise = domain.SegmentNonEnterprise
)

// Poultry rearing categories
const (
	PoultryLayer   = "Layer Rearing"
	PoultryBroiler = "Broiler Rearing"
)

// LoanTypes classifies the loan type column. Unrecognised types are kept
// under an empty category.
func LoanTypes() *Classifier {
	return NewClassifier("",
		Rule{Category: LoanNonEnterprise, AllOf: []string{"non", "enterprise"}},
		Rule{Category: LoanEnterprise, AllOf: []string{"enterprise"}},
	)
}

// PoultryTypes classifies the poultry rearing column; other values drop
func PoultryTypes() *Classifier {
	return NewDroppingClassifier(
		Rule{Category: PoultryLayer, AnyOf: []string{"layer"}},
		Rule{Category: PoultryBroiler, AnyOf: []string{"broiler"}},
	)
}

// Segments classifies disbursement loan types. Negated enterprise labels
// are checked before the bare enterprise keywords.
func Segments() *Classifier {
	return NewClassifier(domain.SegmentUnknown,
		Rule{Category: domain.SegmentNonEnterprise, AllOf: []string{"non"}, AnyOf: []string{"ent"}},
		Rule{Category: domain.SegmentEnterprise, AnyOf: []string{"enterprise", "enterp", "ent"}},
		Rule{Category: domain.SegmentNonEnterprise, AnyOf: []string{"non", "micro", "agri", "general"}},
	)
}
