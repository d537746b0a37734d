package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ReportName identifies one of the fixed report views
type ReportName string

const (
	ReportLoan    ReportName = "loan"
	ReportPoultry ReportName = "poultry"
	ReportGrants  ReportName = "grants"
)

// FixedReportNames lists the fixed views in presentation order
var FixedReportNames = []ReportName{ReportLoan, ReportPoultry, ReportGrants}

// ParseReportName matches s case-insensitively against the fixed views
func ParseReportName(s string) (ReportName, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, n := range FixedReportNames {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// RowKind distinguishes data rows from synthetic total rows
type RowKind string

const (
	RowKindData       RowKind = "data"
	RowKindSubtotal   RowKind = "subtotal"
	RowKindGrandTotal RowKind = "grand_total"
)

// GrandTotalLabel is the branch label of the final summary row
const GrandTotalLabel = "Grand Total"

// SubtotalSuffix is appended to a branch name to label its subtotal row
const SubtotalSuffix = " Total"

// AggregateRow is one output row of a grouped report
type AggregateRow struct {
	Serial   int     `json:"serial"`
	Branch   string  `json:"branch"`
	Category string  `json:"category"`
	Count    int64   `json:"count"`
	Sum      float64 `json:"sum"`
	Kind     RowKind `json:"kind"`
}

// IsTotal reports whether the row is a subtotal or the grand total
func (r AggregateRow) IsTotal() bool {
	return r.Kind != RowKindData
}

// ReportColumns holds the display labels of a report.
// An empty Category means the view has no category column.
type ReportColumns struct {
	Serial   string
	Branch   string
	Category string
	Count    string
	Sum      string
}

// Report is an ordered, serial-numbered aggregate table
type Report struct {
	Name    ReportName
	Title   string
	Columns ReportColumns
	Rows    []AggregateRow
}

// Headers returns the column labels in display order
func (r Report) Headers() []string {
	h := []string{r.Columns.Serial, r.Columns.Branch}
	if r.Columns.Category != "" {
		h = append(h, r.Columns.Category)
	}
	return append(h, r.Columns.Count, r.Columns.Sum)
}

// Values returns the cells of a row aligned with Headers
func (r Report) Values(row AggregateRow) []any {
	v := []any{row.Serial, row.Branch}
	if r.Columns.Category != "" {
		v = append(v, row.Category)
	}
	return append(v, row.Count, row.Sum)
}

// Records returns the rows keyed by column label
func (r Report) Records() []Record {
	headers := r.Headers()
	out := make([]Record, 0, len(r.Rows))
	for _, row := range r.Rows {
		out = append(out, Record{keys: headers, values: r.Values(row)})
	}
	return out
}

// Record is a JSON object that keeps its keys in column order
type Record struct {
	keys   []string
	values []any
}

// Get returns the value stored under key
func (r Record) Get(key string) (any, bool) {
	for i, k := range r.keys {
		if k == key && i < len(r.values) {
			return r.values[i], true
		}
	}
	return nil, false
}

// MarshalJSON writes the record with keys in column order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i >= len(r.values) {
			break
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FixedReports bundles the three fixed views built from one dataset
type FixedReports struct {
	Loan    Report
	Poultry Report
	Grants  Report
}

// ByName returns the named report
func (f FixedReports) ByName(name ReportName) (Report, bool) {
	switch name {
	case ReportLoan:
		return f.Loan, true
	case ReportPoultry:
		return f.Poultry, true
	case ReportGrants:
		return f.Grants, true
	}
	return Report{}, false
}

// FixedReportsResponse is the JSON body of the fixed reports endpoint
type FixedReportsResponse struct {
	Loan    []Record `json:"loan"`
	Poultry []Record `json:"poultry"`
	Grants  []Record `json:"grants"`
}

// Response converts the reports into their JSON body
func (f FixedReports) Response() FixedReportsResponse {
	return FixedReportsResponse{
		Loan:    f.Loan.Records(),
		Poultry: f.Poultry.Records(),
		Grants:  f.Grants.Records(),
	}
}
