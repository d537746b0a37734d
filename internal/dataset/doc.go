// Package dataset holds the tabular snapshot of the published loan
// spreadsheet and the helpers that address and clean its cells.
//
// A Dataset is immutable once built. Column positions are not stable between
// refreshes of the upstream sheet, so callers locate fields through a
// Resolver, either by header name or by spreadsheet column letter:
//
//	r := dataset.NewResolver(ds, logger)
//	cols, err := r.Resolve(
//	    dataset.FieldSpec{Field: "branch", Names: []string{"branch"}, Position: "G"},
//	    dataset.FieldSpec{Field: "amount", Position: "AQ"},
//	)
//
// Positional lookups clamp to the last column of a narrow sheet instead of
// failing. Name lookups that miss with no positional fallback produce a
// *MissingColumnError, which matches ErrMissingColumn with errors.Is.
package dataset
