package source

import "errors"

// Sentinel kinds for dataset source errors.
var (
	ErrNotFound       = errors.New("dataset file not found")
	ErrFetchFailed    = errors.New("dataset fetch failed")
	ErrInvalidName    = errors.New("invalid dataset name")
	ErrInvalidBaseURL = errors.New("invalid source base url")
	ErrEmptyTable     = errors.New("dataset table has no rows")
)
