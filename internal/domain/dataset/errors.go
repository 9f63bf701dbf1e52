package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrEmptyValue        = errors.New("empty value")
	ErrNotNumeric        = errors.New("value is not numeric")
	ErrNoHeader          = errors.New("dataset has no header row")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrDuplicateColumn   = errors.New("duplicate column")
	ErrMalformedDataset  = errors.New("malformed dataset")
)
