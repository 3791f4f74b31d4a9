package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Context is the default handler.Context implementation.
// Context methods delegate to the request context.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

// NewContext creates a Context for one request.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (time.Time, bool) {
	return c.r.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *Context) Err() error {
	return c.r.Context().Err()
}

func (c *Context) Value(key any) any {
	return c.r.Context().Value(key)
}

func (c *Context) Request() *http.Request {
	return c.r
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the chi URL parameter key, or "".
func (c *Context) Param(key string) string {
	return chi.URLParam(c.r, key)
}

// SetValue stores val in the request context, so it is visible to later
// middleware, the handler and context-aware loggers.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
