package app

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/scsp/core/server"
)

type Config struct {
	Server server.Config
	Bus    BusConfig

	AppName  string `env:"APP_NAME" envDefault:"scsp"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type BusConfig struct {
	// StreamWaitTimeout bounds each wait of the push loop; the peer is pinged after it.
	StreamWaitTimeout time.Duration `env:"BUS_STREAM_WAIT_TIMEOUT" envDefault:"1s"`
	// PollTimeout bounds a long-poll. Must be shorter than the server write timeout.
	PollTimeout  time.Duration `env:"BUS_POLL_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes int64         `env:"BUS_MAX_BODY_BYTES" envDefault:"1048576"`
	// ShutdownEndpoint enables GET /shutdown.
	ShutdownEndpoint bool `env:"BUS_SHUTDOWN_ENDPOINT" envDefault:"true"`

	// WSAllowedOrigins lists the browser origins allowed to open a stream.
	// Requests without an Origin header, like the agent's, are always allowed. "*" allows any.
	WSAllowedOrigins   []string      `env:"BUS_WS_ALLOWED_ORIGINS" envSeparator:","`
	WSHandshakeTimeout time.Duration `env:"BUS_WS_HANDSHAKE_TIMEOUT" envDefault:"10s"`

	// MetricsMaxChannels caps the distinct channel label values; later channels report as "_other".
	MetricsMaxChannels int `env:"BUS_METRICS_MAX_CHANNELS" envDefault:"1000"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Server: server.DefaultConfig(),
		Bus: BusConfig{
			StreamWaitTimeout:  time.Second,
			PollTimeout:        10 * time.Second,
			MaxBodyBytes:       1 << 20,
			ShutdownEndpoint:   true,
			WSHandshakeTimeout: 10 * time.Second,
			MetricsMaxChannels: 1000,
		},
		AppName:  "scsp",
		Env:      "development",
		LogLevel: "info",
	}
}

// Validate rejects settings the server cannot honor.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: SERVER_ADDR is empty", ErrInvalidConfig)
	}
	if c.Bus.StreamWaitTimeout <= 0 {
		return fmt.Errorf("%w: BUS_STREAM_WAIT_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Bus.PollTimeout < 0 {
		return fmt.Errorf("%w: BUS_POLL_TIMEOUT must not be negative", ErrInvalidConfig)
	}
	if c.Server.WriteTimeout > 0 && (c.Bus.PollTimeout == 0 || c.Bus.PollTimeout >= c.Server.WriteTimeout) {
		return fmt.Errorf("%w: BUS_POLL_TIMEOUT (%s) must be shorter than SERVER_WRITE_TIMEOUT (%s)",
			ErrInvalidConfig, c.Bus.PollTimeout, c.Server.WriteTimeout)
	}
	if c.Bus.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: BUS_MAX_BODY_BYTES must be positive", ErrInvalidConfig)
	}
	if c.Bus.MetricsMaxChannels <= 0 {
		return fmt.Errorf("%w: BUS_METRICS_MAX_CHANNELS must be positive", ErrInvalidConfig)
	}
	return nil
}
