// Package exporter renders built reports as downloadable files.
//
// XLSXWriter produces the fixed reports workbook (sheets Loan, Poultry and
// Grants) and the styled branch disbursement workbook. CSVWriter writes a
// single fixed report as UTF-8 CSV with a byte order mark so that Excel
// detects the encoding.
package exporter
