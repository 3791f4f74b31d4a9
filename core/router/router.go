package router

import (
	"net/http"

	"github.com/dmitrymomot/scsp/core/handler"
)

// Router routes requests to typed handlers. Backed by go-chi/chi.
type Router[C handler.Context] interface {
	http.Handler

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	// Handle registers h for every HTTP method.
	Handle(pattern string, h handler.HandlerFunc[C])
	// Mount attaches a plain http.Handler under pattern, bypassing the typed middleware chain.
	Mount(pattern string, h http.Handler)

	// Use appends middleware. It must be called before any route of this router is registered.
	Use(middlewares ...handler.Middleware[C])
	// Group registers routes sharing the current middleware plus anything fn adds with Use.
	Group(fn func(r Router[C]))

	Routes() []Route
}

// Route describes a single registered route.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router for context type C.
// Without WithContextFactory only *Context is supported.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux(opts...)
}
