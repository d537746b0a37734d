package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is matched by every *MissingColumnError
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyDataset is returned when the source has no header row
	ErrEmptyDataset = errors.New("dataset has no columns")

	// ErrInvalidColumnLabel is returned for a column label with no letters
	ErrInvalidColumnLabel = errors.New("invalid column label")
)

// MissingColumnError names the logical fields that could not be located
type MissingColumnError struct {
	Fields []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns (need: %s)", strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrMissingColumn) hold
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
