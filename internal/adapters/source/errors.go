package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrUnknownGrouping = errors.New("unknown grouping")
	ErrDataUnavailable = errors.New("data file not found")
	ErrMalformedData   = errors.New("data file invalid")
)
