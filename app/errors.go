package app

import "errors"

var (
	ErrInvalidConfig = errors.New("app: invalid configuration")
	ErrNilOption     = errors.New("app: option value cannot be nil")
)
