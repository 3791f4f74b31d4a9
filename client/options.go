package client

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for long-polls and plain requests.
// Its timeout must exceed the server poll timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithDialer sets the WebSocket dialer used by Stream.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}
