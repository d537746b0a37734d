// Package shared holds helpers used across packages.
//
// The testutil subpackage provides a capturing slog handler for log
// assertions and a builder for published-sheet fixtures:
//
//	sheet := testutil.NewSheetFixture(t).
//	    Loan("Dhaka", "Enterprise", "1000").
//	    Disbursement("2024-01-05", "Dhaka", "500", "Enterprise")
//	srv := testutil.ServeSheet(t, sheet.CSV())
//
// Nothing here may import domain packages.
package shared
