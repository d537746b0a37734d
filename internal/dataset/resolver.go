package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"
)

// FieldSpec describes how to locate one logical field.
// Names are tried first, in order; Position is the spreadsheet column
// letter used when no name matches.
type FieldSpec struct {
	Field    string
	Names    []string
	Position string
	Optional bool
}

// Columns maps logical field names to 0-based column indexes
type Columns map[string]int

// Has reports whether field was resolved
func (c Columns) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Resolver locates columns in one dataset
type Resolver struct {
	ds     *Dataset
	lookup map[string]int
	logger *slog.Logger
}

// NewResolver indexes the dataset headers for lookup
func NewResolver(ds *Dataset, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	lookup := make(map[string]int, len(ds.Headers))
	for i, h := range ds.Headers {
		key := normalizeName(h)
		if _, dup := lookup[key]; !dup {
			lookup[key] = i
		}
	}
	return &Resolver{ds: ds, lookup: lookup, logger: logger.With("component", "column_resolver")}
}

// ByName returns the index of the first candidate present in the headers
func (r *Resolver) ByName(candidates ...string) (int, bool) {
	for _, c := range candidates {
		if idx, ok := r.lookup[normalizeName(c)]; ok {
			return idx, true
		}
	}
	return 0, false
}

// ByPosition converts a column label to a 0-based index clamped into the
// dataset width.
func (r *Resolver) ByPosition(label string) (int, error) {
	if r.ds.ColumnCount() == 0 {
		return 0, ErrEmptyDataset
	}
	n, err := ColumnIndex(label)
	if err != nil {
		return 0, err
	}
	return clamp(n, 1, r.ds.ColumnCount()) - 1, nil
}

// Resolve locates every spec. All required fields that cannot be found are
// reported together in a single *MissingColumnError.
func (r *Resolver) Resolve(specs ...FieldSpec) (Columns, error) {
	cols := make(Columns, len(specs))
	var missing []string

	for _, spec := range specs {
		if idx, ok := r.ByName(spec.Names...); ok {
			cols[spec.Field] = idx
			continue
		}

		if spec.Position != "" {
			idx, err := r.ByPosition(spec.Position)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", spec.Field, err)
			}
			if len(spec.Names) > 0 {
				r.logger.Warn("column resolved by position",
					slog.String("field", spec.Field),
					slog.String("position", spec.Position),
					slog.Int("index", idx),
					slog.String("header", r.ds.Headers[idx]))
			}
			cols[spec.Field] = idx
			continue
		}

		if !spec.Optional {
			missing = append(missing, spec.Field)
		}
	}

	if len(missing) > 0 {
		r.logger.Warn("required columns missing",
			slog.Any("fields", missing),
			slog.Int("column_count", r.ds.ColumnCount()))
		return nil, &MissingColumnError{Fields: missing}
	}
	return cols, nil
}

// ColumnIndex converts a spreadsheet column label to its 1-based number
// (A=1, Z=26, AA=27). Non-letter characters are ignored. Labels beyond
// any real sheet width saturate at math.MaxInt; ByPosition clamps them to
// the last column.
func ColumnIndex(label string) (int, error) {
	letters := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, label)
	if letters == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColumnLabel, label)
	}
	n := 0
	for _, r := range letters {
		d := int(r-'A') + 1
		if n > (math.MaxInt-d)/26 {
			return math.MaxInt, nil
		}
		n = n*26 + d
	}
	return n, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
