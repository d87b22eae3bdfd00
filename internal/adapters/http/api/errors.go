package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrDataUnavailable = errors.New("data unavailable")
	ErrInternal        = errors.New("internal error")
)

// publicMessages are the client-facing texts per kind.
var publicMessages = map[error]string{ //nolint:gochecknoglobals // fixed lookup table
	ErrBadRequest:      "Missing or invalid group parameter",
	ErrDataUnavailable: "Data file not found or invalid",
	ErrInternal:        "Internal Server Error",
}

// opError ties an error to the handler operation and an API kind.
type opError struct {
	Op   string
	Kind error
	Err  error
}

func (e *opError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *opError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{Op: op, Kind: kind}
}

// Wrap attaches op to an unexpected error.
func Wrap(op string, err error) error {
	return &opError{Op: op, Kind: ErrInternal, Err: err}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &opError{Op: op, Kind: kind, Err: err}
}

// publicMessage returns the text safe to show to clients for err.
func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		if msg, ok := publicMessages[oe.Kind]; ok {
			return msg
		}
	}
	return publicMessages[ErrInternal]
}
