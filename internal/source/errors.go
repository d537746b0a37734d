package source

import (
	"errors"
	"fmt"
)

// ErrUpstreamFetch is matched by every *FetchError
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// FetchError describes a failed request to the data source
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.Err != nil {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUpstreamFetch) hold
func (e *FetchError) Is(target error) bool {
	return target == ErrUpstreamFetch
}
