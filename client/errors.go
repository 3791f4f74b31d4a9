package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL        = errors.New("client: invalid base url")
	ErrUnsupportedScheme = errors.New("client: unsupported url scheme")
	ErrTransport         = errors.New("client: transport failure")
	ErrHandler           = errors.New("client: handler failed")
	ErrUnexpectedFrame   = errors.New("client: unexpected frame type")
)

// StatusError is returned, wrapped in ErrTransport, when the server answers
// with an unexpected status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
