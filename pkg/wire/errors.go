package wire

import "errors"

var (
	ErrInvalidPayload = errors.New("wire: msg must be an array of bytes or a base64 string")
	ErrMissingField   = errors.New("wire: missing required field")
)
