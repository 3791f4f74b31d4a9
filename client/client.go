package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/pkg/wire"
)

// maxErrorBody caps how much of an error response is kept in StatusError.
const maxErrorBody = 1 << 10

// HandlerFunc receives one message. A non-nil error stops delivery.
type HandlerFunc func(ctx context.Context, msg []byte) error

// Client is a connection factory for one server. Safe for concurrent use.
type Client struct {
	httpBase *url.URL
	wsBase   *url.URL

	http   *http.Client
	dialer *websocket.Dialer
	logger *slog.Logger
}

// New creates a client for baseURL. The streaming endpoint uses ws for http
// and wss for https; any other scheme is rejected.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, baseURL)
	}

	ws := *u
	switch u.Scheme {
	case "http":
		ws.Scheme = "ws"
	case "https":
		ws.Scheme = "wss"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	c := &Client{
		httpBase: u,
		wsBase:   &ws,
		http:     &http.Client{},
		dialer:   websocket.DefaultDialer,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// StreamURL returns the WebSocket registration endpoint.
func (c *Client) StreamURL(clientID, channel string) string {
	return endpoint(c.wsBase, "/register", registerQuery(clientID, channel))
}

// PollURL returns the long-poll registration endpoint.
func (c *Client) PollURL(clientID, channel string) string {
	return endpoint(c.httpBase, "/register", registerQuery(clientID, channel))
}

// Stream opens a persistent registration and calls fn for every message until
// fn fails, the connection ends, or ctx is canceled.
func (c *Client) Stream(ctx context.Context, clientID, channel string, fn HandlerFunc) error {
	u := c.StreamURL(clientID, channel)
	log := c.logger.With(
		logger.Component("client"),
		logger.Channel(channel),
		logger.ClientID(clientID),
	)

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w: %w", err, readStatusError(resp))
		}
		log.ErrorContext(ctx, "failed to register stream", logger.URL(u), logger.Error(err))
		return transportError("dial", err)
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log.DebugContext(ctx, "stream registered")

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return transportError("read", err)
		}
		if typ != websocket.BinaryMessage {
			return fmt.Errorf("%w: %d", ErrUnexpectedFrame, typ)
		}

		if err := fn(ctx, msg); err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return fmt.Errorf("%w: %w", ErrHandler, err)
		}
	}
}

// Poll repeats long-poll registrations and calls fn for every message until
// fn fails, a request fails, or ctx is canceled. Polls without a message are
// retried immediately.
func (c *Client) Poll(ctx context.Context, clientID, channel string, fn HandlerFunc) error {
	for {
		res, err := c.PollOnce(ctx, clientID, channel)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if !res.HasMsg {
			continue
		}
		if err := fn(ctx, res.Msg); err != nil {
			return fmt.Errorf("%w: %w", ErrHandler, err)
		}
	}
}

// PollOnce performs a single long-poll.
func (c *Client) PollOnce(ctx context.Context, clientID, channel string) (wire.PollResponse, error) {
	var res wire.PollResponse
	err := c.do(ctx, http.MethodGet, c.PollURL(clientID, channel), nil, http.StatusOK, &res)
	return res, err
}

// Write publishes msg to channel.
func (c *Client) Write(ctx context.Context, channel string, msg []byte) error {
	body, err := json.Marshal(wire.WriteRequest{Channel: channel, Msg: msg})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, endpoint(c.httpBase, "/write", nil), body, http.StatusNoContent, nil)
}

// Info returns a snapshot of the server registry.
func (c *Client) Info(ctx context.Context) (wire.Info, error) {
	var info wire.Info
	err := c.do(ctx, http.MethodGet, endpoint(c.httpBase, "/info", nil), nil, http.StatusOK, &info)
	return info, err
}

// Shutdown asks the server to shut down gracefully.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, endpoint(c.httpBase, "/shutdown", nil), nil, http.StatusAccepted, nil)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, want int, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(method+" "+req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return transportError(method+" "+req.URL.Path, readStatusError(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError("decode "+req.URL.Path, err)
	}
	return nil
}

func readStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Code: resp.StatusCode,
		Body: strings.TrimSpace(string(body)),
	}
}

func registerQuery(clientID, channel string) url.Values {
	return url.Values{
		wire.ParamClientID: {clientID},
		wire.ParamChannel:  {channel},
	}
}

func endpoint(base *url.URL, path string, q url.Values) string {
	u := *base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = q.Encode()
	return u.String()
}
