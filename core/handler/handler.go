package handler

import "net/http"

// Response renders the outcome of a handler. A returned error is passed to
// the router error handler unless the response has already been written.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a request with a typed context and returns its Response.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler renders errors returned by responses and routing failures.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a HandlerFunc. The first middleware of a chain runs first.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
