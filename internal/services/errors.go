package services

import "errors"

// ErrUnknownReport is the cause of the validation error returned for a
// report name outside loan, poultry and grants.
var ErrUnknownReport = errors.New("unknown report")
