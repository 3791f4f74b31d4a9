package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/scsp/core/bus"
	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/health"
	"github.com/dmitrymomot/scsp/core/response"
	"github.com/dmitrymomot/scsp/core/router"
	"github.com/dmitrymomot/scsp/middleware"
)

// API serves a Bus over HTTP.
type API struct {
	bus    *bus.Bus
	logger *slog.Logger

	streamWait        time.Duration
	pollTimeout       time.Duration
	frameWriteTimeout time.Duration
	maxBodyBytes      int64

	shutdown  func()
	metrics   http.Handler
	wsOptions []response.WebSocketOption
}

// New creates an API for b. Defaults to a no-op logger.
func New(b *bus.Bus, opts ...Option) *API {
	a := &API{
		bus:               b,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		streamWait:        bus.DefaultWaitTimeout,
		pollTimeout:       DefaultPollTimeout,
		frameWriteTimeout: DefaultFrameWriteTimeout,
		maxBodyBytes:      DefaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Handler builds the route table.
func (a *API) Handler() http.Handler {
	r := router.New(
		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
		router.WithLogger[*router.Context](a.logger),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
				Logger: a.logger,
				// Health checks and scrapes would drown the log
				Skip: func(ctx handler.Context) bool {
					p := ctx.Request().URL.Path
					return strings.HasPrefix(p, "/health/")
				},
			}),
		),
	)

	r.Get("/", a.index)
	r.Get("/register", a.register)
	r.Get("/info", a.info)
	r.Get("/shutdown", a.shutdownHandler)
	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](a.logger, a.bus.Ping))

	r.Group(func(r router.Router[*router.Context]) {
		r.Use(middleware.BodyLimitWithSize[*router.Context](a.maxBodyBytes))
		r.Post("/write", a.write)
	})

	if a.metrics != nil {
		r.Mount("/metrics", a.metrics)
	}

	return r
}
