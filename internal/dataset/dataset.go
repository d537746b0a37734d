package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const utf8BOM = "\ufeff"

// Dataset is an ordered set of raw records sharing one header row
type Dataset struct {
	Headers   []string
	Rows      [][]string
	FetchedAt time.Time
	Source    string
}

// ColumnCount returns the number of header columns
func (d *Dataset) ColumnCount() int {
	return len(d.Headers)
}

// Len returns the number of data rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Cell returns the raw value at row i, column col (0-based).
// Out-of-range positions read as empty.
func (d *Dataset) Cell(i, col int) string {
	if i < 0 || i >= len(d.Rows) {
		return ""
	}
	row := d.Rows[i]
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ParseCSV decodes a CSV document whose first record is the header row.
// Short rows are padded and long rows truncated to the header width.
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	ds := &Dataset{Headers: normalizeHeaders(header)}
	if ds.ColumnCount() == 0 {
		return nil, ErrEmptyDataset
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", line, err)
		}
		ds.Rows = append(ds.Rows, fitRow(record, ds.ColumnCount()))
	}

	return ds, nil
}

// FromValues builds a dataset from a value matrix as returned by the
// Sheets API, first row being the header.
func FromValues(values [][]interface{}) (*Dataset, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{Headers: normalizeHeaders(toStrings(values[0]))}
	if ds.ColumnCount() == 0 {
		return nil, ErrEmptyDataset
	}
	for _, row := range values[1:] {
		ds.Rows = append(ds.Rows, fitRow(toStrings(row), ds.ColumnCount()))
	}
	return ds, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func fitRow(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	row := make([]string, width)
	copy(row, record)
	return row
}
