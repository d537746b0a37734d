// Package app wires the reports service together and manages its lifecycle.
//
// NewApplication loads configuration, initializes the logger and
// OpenTelemetry, selects the data source (published CSV or Sheets API),
// wraps it in the dataset cache and mounts the HTTP handlers behind the
// middleware chain. Run serves until SIGINT or SIGTERM and then shuts the
// server down within the configured timeout.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
