package config

import "time"

// Application constants
const (
	AppName = "PIDIM SMART Reports"

	// EnvPrefix namespaces every environment variable, e.g. PIDIM_SERVER_PORT
	EnvPrefix = "PIDIM"

	// DefaultCSVURL is the "publish to web" CSV export of the loan sheet
	DefaultCSVURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vRkcagLu_YrYgQxmsO3DnHn90kqALkw9uDByX7UBNRUjaFKKQdE3V-6fm5ZcKGk_A/pub?gid=2143275417&single=true&output=csv"

	DefaultCacheTTL     = 5 * time.Minute
	DefaultFetchTimeout = 30 * time.Second
)

// Data source kinds
const (
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)
