package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetWidth is the column count of the published loan sheet (A..BL)
const SheetWidth = 64

// SheetFixture builds a published-sheet CSV for tests. Cells are addressed
// by spreadsheet column letter.
type SheetFixture struct {
	t       *testing.T
	headers []string
	rows    [][]string
}

// NewSheetFixture creates a fixture with the default header row: the
// disbursement columns carry names, everything else a placeholder.
func NewSheetFixture(t *testing.T) *SheetFixture {
	t.Helper()
	f := &SheetFixture{t: t, headers: make([]string, SheetWidth)}
	for i := range f.headers {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.headers[i] = "col_" + name
	}
	f.SetHeader("A", "Date")
	f.SetHeader("G", "Branch")
	f.SetHeader("H", "Disbursement")
	f.SetHeader("I", "Loan_Type")
	return f
}

// SetHeader renames the header of one column
func (f *SheetFixture) SetHeader(label, name string) *SheetFixture {
	f.headers[f.index(label)] = name
	return f
}

// Row appends a row; cells maps column letters to values
func (f *SheetFixture) Row(cells map[string]string) *SheetFixture {
	row := make([]string, SheetWidth)
	for label, v := range cells {
		row[f.index(label)] = v
	}
	f.rows = append(f.rows, row)
	return f
}

// Loan appends a row for the loan view
func (f *SheetFixture) Loan(branch, loanType, amount string) *SheetFixture {
	return f.Row(map[string]string{"G": branch, "AN": loanType, "AQ": amount})
}

// Poultry appends a row for the poultry view
func (f *SheetFixture) Poultry(branch, kind, birds string) *SheetFixture {
	return f.Row(map[string]string{"G": branch, "T": kind, "U": birds})
}

// Grant appends a row for the grants view
func (f *SheetFixture) Grant(branch, amount string) *SheetFixture {
	return f.Row(map[string]string{"G": branch, "BL": amount})
}

// Disbursement appends a row for the monthly disbursement pivot
func (f *SheetFixture) Disbursement(date, branch, amount, loanType string) *SheetFixture {
	return f.Row(map[string]string{"A": date, "G": branch, "H": amount, "I": loanType})
}

// CSV renders the fixture
func (f *SheetFixture) CSV() []byte {
	f.t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.headers); err != nil {
		f.t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(f.rows); err != nil {
		f.t.Fatalf("write rows: %v", err)
	}
	return buf.Bytes()
}

// Values renders the fixture the way the Sheets API returns it
func (f *SheetFixture) Values() [][]interface{} {
	out := make([][]interface{}, 0, len(f.rows)+1)
	for _, r := range append([][]string{f.headers}, f.rows...) {
		row := make([]interface{}, len(r))
		for i, v := range r {
			row[i] = v
		}
		out = append(out, row)
	}
	return out
}

func (f *SheetFixture) index(label string) int {
	n, err := excelize.ColumnNameToNumber(label)
	if err != nil || n > SheetWidth {
		f.t.Fatalf("bad column label %q", label)
	}
	return n - 1
}

// PublishedSheet serves a CSV body as a published sheet and counts hits
type PublishedSheet struct {
	Server *httptest.Server
	hits   atomic.Int64
}

// ServeSheet starts a server returning body for every request. The server
// is closed when the test ends.
func ServeSheet(t *testing.T, body []byte) *PublishedSheet {
	t.Helper()
	ps := &PublishedSheet{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.hits.Add(1)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		fmt.Fprint(w, string(body))
	}))
	t.Cleanup(ps.Server.Close)
	return ps
}

// URL returns the CSV URL of the sheet
func (p *PublishedSheet) URL() string {
	return p.Server.URL + "/pub?output=csv"
}

// Hits returns how many times the sheet was fetched
func (p *PublishedSheet) Hits() int64 {
	return p.hits.Load()
}
