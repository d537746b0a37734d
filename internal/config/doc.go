// Package config loads the service configuration from environment variables
// and an optional YAML file.
//
// Environment variables use the PIDIM_ prefix and follow the struct layout:
//
//	PIDIM_SERVER_PORT=8080
//	PIDIM_SOURCE_KIND=csv
//	PIDIM_SOURCE_CSV_URL=https://docs.google.com/.../pub?output=csv
//	PIDIM_SOURCE_CACHE_TTL=5m
//	PIDIM_COLUMNS_LOAN_AMOUNT=AQ
//	PIDIM_COLUMNS_AMOUNT_NAMES=disbursement,amount
//
// A config.yaml in the working directory (or the file named by
// PIDIM_CONFIG_FILE) is read on top of the defaults; variables that are set
// in the environment win over the file.
//
// The Columns section is the only place the sheet layout is described.
// When the upstream sheet gains or loses columns, adjust the letters here
// rather than the report code.
package config
