package reports

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"pidimsmart/internal/dataset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testBuilder() *Builder {
	return NewBuilder(DefaultLayout(), DefaultDisbursementLayout(), testLogger())
}

// sheet builds a 64 column dataset; each row maps column letters to values.
func sheet(t *testing.T, rows ...map[string]string) *dataset.Dataset {
	t.Helper()
	const width = 64
	headers := make([]string, width)
	for i := range headers {
		headers[i] = "c"
	}
	ds := &dataset.Dataset{Headers: headers}
	for _, r := range rows {
		row := make([]string, width)
		for label, v := range r {
			idx, err := dataset.ColumnIndex(label)
			require.NoError(t, err)
			row[idx-1] = v
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func loanRow(branch, loanType, amount string) map[string]string {
	return map[string]string{"G": branch, "AN": loanType, "AQ": amount}
}

func poultryRow(branch, kind, birds string) map[string]string {
	return map[string]string{"G": branch, "T": kind, "U": birds}
}

func grantRow(branch, amount string) map[string]string {
	return map[string]string{"G": branch, "BL": amount}
}
