package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrInvalidURL = errors.New("invalid redis url")
	ErrEmptyKey   = errors.New("empty cache key")
)
