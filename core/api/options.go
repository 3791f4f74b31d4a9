package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/scsp/core/response"
)

const (
	// DefaultPollTimeout bounds a long-poll. Keep it below the server write timeout.
	DefaultPollTimeout = 10 * time.Second
	// DefaultFrameWriteTimeout bounds a single WebSocket frame or ping write.
	DefaultFrameWriteTimeout = 10 * time.Second
	// DefaultMaxBodyBytes limits the body of POST /write.
	DefaultMaxBodyBytes int64 = 1 << 20

	requestIDHeader = "X-Request-ID"
)

// Option configures the API.
type Option func(*API)

func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithStreamWaitTimeout sets how long the push loop waits for a message
// before it pings the peer.
func WithStreamWaitTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.streamWait = d
		}
	}
}

// WithPollTimeout bounds every long-poll. Zero waits until a message arrives,
// the bus shuts down or the client goes away.
func WithPollTimeout(d time.Duration) Option {
	return func(a *API) {
		if d >= 0 {
			a.pollTimeout = d
		}
	}
}

func WithFrameWriteTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.frameWriteTimeout = d
		}
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBodyBytes = n
		}
	}
}

// WithShutdownFunc sets the function GET /shutdown calls after answering.
// Without it the endpoint answers 503.
func WithShutdownFunc(fn func()) Option {
	return func(a *API) {
		a.shutdown = fn
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *API) {
		a.metrics = h
	}
}

// WithWebSocketOptions passes options to the WebSocket upgrade of /register.
func WithWebSocketOptions(opts ...response.WebSocketOption) Option {
	return func(a *API) {
		a.wsOptions = append(a.wsOptions, opts...)
	}
}
