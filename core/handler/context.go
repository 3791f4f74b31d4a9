package handler

import (
	"context"
	"net/http"
)

// Context is the per-request context handed to a HandlerFunc.
// Its context.Context methods reflect the request context.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// Param returns a named URL parameter, or "".
	Param(key string) string
	// SetValue stores a request-scoped value, readable through Value.
	SetValue(key, val any)
}
