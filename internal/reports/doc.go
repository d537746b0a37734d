// Package reports turns a raw dataset into the grouped loan, poultry and
// grants tables and the monthly branch disbursement pivot.
//
// Every view follows the same pipeline: resolve columns, clean and classify
// each record into an Entry, then hand the entries to an Aggregator that
// groups them, interleaves "<branch> Total" rows, appends the "Grand Total"
// row and numbers the result 1..N. Nothing here performs I/O; the same
// dataset always produces the same report.
package reports
