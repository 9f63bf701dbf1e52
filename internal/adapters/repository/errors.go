package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	ErrNotPublished  = errors.New("no dataset snapshot published")
	ErrNotFound      = errors.New("dataset not found")
	ErrEmptySnapshot = errors.New("snapshot has no datasets")
)
