package client

import "errors"

// Sentinel kinds for client errors.
var (
	ErrSuperseded = errors.New("selection superseded")
	ErrTimeout    = errors.New("fetch timed out")
	ErrStatus     = errors.New("unexpected response status")
	ErrBadRequest = errors.New("server rejected grouping")
	ErrMalformed  = errors.New("malformed response")
)
