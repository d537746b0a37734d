// Package source retrieves the loan spreadsheet and keeps the most recent
// snapshot in a time-bounded cache.
//
// Two fetchers are provided: CSVFetcher reads the sheet's "publish to web"
// CSV export and SheetsFetcher reads the same sheet through the Google Sheets
// API. Both yield a *dataset.Dataset. Cache wraps either one; concurrent
// misses share a single upstream request and failed fetches are never
// cached.
package source
