package catalog

import "errors"

var (
	ErrEntryNotFound = errors.New("catalog entry not found")
	ErrInvalidEntry  = errors.New("invalid catalog entry")
)
