package router

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/scsp/core/handler"
)

// mux adapts typed handlers onto a chi route tree.
// Groups share the tree and carry their own middleware stack.
type mux[C handler.Context] struct {
	tree         chi.Router
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger
	hasRoutes    bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         chi.NewRouter(),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		var zero C
		if _, ok := any(zero).(*Context); !ok {
			panic(ErrNoContextFactory)
		}
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			return any(NewContext(w, r)).(C)
		}
	}

	// Routing misses run through the root middleware, so they are logged like any request
	m.tree.NotFound(func(w http.ResponseWriter, r *http.Request) {
		m.serve(chain(m.middlewares, fail[C](ErrNotFound)), w, r)
	})
	m.tree.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		m.serve(chain(m.middlewares, fail[C](ErrMethodNotAllowed)), w, r)
	})

	return m
}

func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.tree.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.tree.Get(pattern, m.adapt(h))
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.tree.Post(pattern, m.adapt(h))
}

func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.tree.Handle(pattern, m.adapt(h))
}

func (m *mux[C]) Mount(pattern string, h http.Handler) {
	m.hasRoutes = true
	m.tree.Handle(pattern, h)
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic(ErrRoutesDefined)
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

func (m *mux[C]) Group(fn func(r Router[C])) {
	if fn == nil {
		return
	}
	fn(&mux[C]{
		tree:         m.tree,
		middlewares:  slices.Clone(m.middlewares),
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
	})
}

func (m *mux[C]) Routes() []Route {
	var routes []Route
	_ = chi.Walk(m.tree, func(method, pattern string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, Route{Method: method, Pattern: pattern})
		return nil
	})
	return routes
}

// adapt freezes the current middleware stack around h.
func (m *mux[C]) adapt(h handler.HandlerFunc[C]) http.HandlerFunc {
	m.hasRoutes = true
	fn := chain(m.middlewares, h)
	return func(w http.ResponseWriter, r *http.Request) {
		m.serve(fn, w, r)
	}
}

func (m *mux[C]) serve(fn handler.HandlerFunc[C], w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		perr := &panicError{value: p, stack: debug.Stack()}
		if ww.Written() {
			m.logger.Error("panic after response written",
				slog.Any("value", perr.value),
				slog.String("stack", string(perr.stack)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			return
		}
		m.errorHandler(ctx, perr)
	}()

	resp := fn(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	// Middleware may have enriched the request context through SetValue
	if err := resp(ww, ctx.Request()); err != nil {
		m.errorHandler(ctx, err)
	}
}

func fail[C handler.Context](err error) handler.HandlerFunc[C] {
	return func(C) handler.Response {
		return func(http.ResponseWriter, *http.Request) error { return err }
	}
}

// chain builds a single handler from a middleware stack and endpoint.
// The first middleware runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
