package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/scsp/core/api"
	"github.com/dmitrymomot/scsp/core/bus"
	"github.com/dmitrymomot/scsp/core/config"
	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/core/response"
	"github.com/dmitrymomot/scsp/core/server"
	"github.com/dmitrymomot/scsp/middleware"
	"github.com/dmitrymomot/scsp/pkg/metrics"
)

// App wires the bus, its HTTP API and the server together.
type App struct {
	config    Config
	hasConfig bool

	logger  *slog.Logger
	bus     *bus.Bus
	metrics *metrics.Prom
	server  *server.Server
}

type Option func(*App) error

// New builds an App. Configuration is loaded from the environment unless
// WithConfig is given.
func New(opts ...Option) (*App, error) {
	app := &App{}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.hasConfig {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}
	if err := app.config.Validate(); err != nil {
		return nil, err
	}

	if app.logger == nil {
		app.logger = logger.New(
			logger.WithEnvironment(app.config.Env, app.config.AppName),
			logger.WithLevelName(app.config.LogLevel),
			logger.WithContextExtractors(middleware.RequestIDExtractor()),
		)
	}

	app.metrics = metrics.NewProm(metrics.WithMaxChannels(app.config.Bus.MetricsMaxChannels))
	app.bus = bus.New(
		bus.WithLogger(app.logger),
		bus.WithMetrics(app.metrics),
	)
	app.metrics.TrackChannels(func() int { return len(app.bus.List()) })

	srv, err := server.NewFromConfig(app.config.Server,
		server.WithLogger(app.logger),
		// Wakes pending long-polls and streams so the drain does not wait for them
		server.WithOnShutdown(app.bus.Shutdown),
	)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	app.server = srv

	return app, nil
}

func WithConfig(cfg Config) Option {
	return func(app *App) error {
		app.config = cfg
		app.hasConfig = true
		return nil
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(app *App) error {
		if log == nil {
			return fmt.Errorf("%w: logger", ErrNilOption)
		}
		app.logger = log
		return nil
	}
}

func (app *App) Bus() *bus.Bus        { return app.bus }
func (app *App) Logger() *slog.Logger { return app.logger }
func (app *App) Config() Config       { return app.config }

// Addr is the bound listen address once the server is ready.
func (app *App) Addr() string { return app.server.Addr() }

// Ready is closed once the server is listening.
func (app *App) Ready() <-chan struct{} { return app.server.Ready() }

// Handler builds the HTTP API. stop is called by GET /shutdown.
func (app *App) Handler(stop func()) http.Handler {
	opts := []api.Option{
		api.WithLogger(app.logger),
		api.WithStreamWaitTimeout(app.config.Bus.StreamWaitTimeout),
		api.WithPollTimeout(app.config.Bus.PollTimeout),
		api.WithMaxBodyBytes(app.config.Bus.MaxBodyBytes),
		api.WithMetricsHandler(app.metrics.Handler()),
		api.WithWebSocketOptions(
			response.WithWSAllowedOrigins(app.config.Bus.WSAllowedOrigins...),
			response.WithWSHandshakeTimeout(app.config.Bus.WSHandshakeTimeout),
		),
	}
	if app.config.Bus.ShutdownEndpoint {
		opts = append(opts, api.WithShutdownFunc(stop))
	}
	return api.New(app.bus, opts...).Handler()
}

// Run serves until ctx is canceled, the server fails, or a client calls
// GET /shutdown. The bus is shut down on every exit.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer app.bus.Shutdown()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(app.server.Run(ctx, app.Handler(cancel)))
	g.Go(func() error {
		select {
		case <-app.server.Ready():
			app.logger.InfoContext(ctx, "scsp is ready",
				logger.Component("app"),
				slog.String("addr", app.server.Addr()),
			)
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		app.logger.Error("app stopped with error", logger.Component("app"), logger.Error(err))
		return err
	}

	app.logger.Info("app stopped", logger.Component("app"))
	return nil
}
