package models

import "errors"

var (
	// ErrDuplicateURL is returned when a record's URL already belongs to a
	// different job ID.
	ErrDuplicateURL = errors.New("url already stored under another job id")
	ErrNotFound     = errors.New("job not found")
)
