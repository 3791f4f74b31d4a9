package api

import "github.com/dmitrymomot/scsp/core/response"

var (
	ErrMissingClientID = response.ErrBadRequest.WithMessage("client_id is required")
	ErrMissingChannel  = response.ErrBadRequest.WithMessage("channel is required")
	ErrAlreadyExists   = response.ErrConflict.WithMessage("client_id is already registered on channel")
	ErrInvalidBody     = response.ErrBadRequest.WithMessage("invalid request body")
	ErrShuttingDown    = response.ErrServiceUnavailable.WithMessage("bus is shutting down")
)
