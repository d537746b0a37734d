package dataset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var placeholderBranches = map[string]struct{}{
	"":            {},
	"nan":         {},
	"none":        {},
	"null":        {},
	"branch name": {},
}

// CleanBranch trims a branch cell. Placeholder values report false.
func CleanBranch(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if IsPlaceholderBranch(s) {
		return "", false
	}
	return s, true
}

// IsPlaceholderBranch reports whether s is a blank or sentinel branch value
func IsPlaceholderBranch(s string) bool {
	_, ok := placeholderBranches[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseAmount reads a numeric cell. Thousands separators are accepted;
// blank or non-numeric values read as zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate reads a date cell in any of the layouts the sheet export uses
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
