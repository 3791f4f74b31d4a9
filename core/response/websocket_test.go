package response_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scsp/core/response"
)

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestWebSocket(t *testing.T) {
	t.Parallel()

	t.Run("session_writes_frames", func(t *testing.T) {
		t.Parallel()

		resp := response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		}, response.WithWSAllowAnyOrigin())

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, resp(w, r))
		}))
		defer server.Close()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
		require.NoError(t, err)
		defer conn.Close()

		typ, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, typ)
		assert.Equal(t, []byte{1, 2, 3}, data)
	})

	t.Run("session_error_is_reported", func(t *testing.T) {
		t.Parallel()

		reported := make(chan error, 1)
		disconnected := make(chan struct{})
		resp := response.WebSocket(
			func(context.Context, *websocket.Conn) error { return errors.New("session failed") },
			response.WithWSErrorHandler(func(_ context.Context, err error) { reported <- err }),
			response.WithWSOnDisconnect(func(context.Context, *websocket.Conn) { close(disconnected) }),
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = resp(w, r)
		}))
		defer server.Close()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
		require.NoError(t, err)
		defer conn.Close()

		select {
		case err := <-reported:
			assert.EqualError(t, err, "session failed")
		case <-time.After(time.Second):
			t.Fatal("session error was not reported")
		}
		<-disconnected
	})

	t.Run("on_connect_error_skips_session", func(t *testing.T) {
		t.Parallel()

		called := make(chan struct{}, 1)
		resp := response.WebSocket(
			func(context.Context, *websocket.Conn) error {
				called <- struct{}{}
				return nil
			},
			response.WithWSOnConnect(func(context.Context, *websocket.Conn) error { return errors.New("denied") }),
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = resp(w, r)
		}))
		defer server.Close()

		conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
		require.NoError(t, err)
		defer conn.Close()

		_, _, err = conn.ReadMessage()
		assert.Error(t, err, "server must close the connection")
		assert.Empty(t, called)
	})

	t.Run("plain_request_fails_upgrade", func(t *testing.T) {
		t.Parallel()

		reported := make(chan error, 1)
		resp := response.WebSocket(
			func(context.Context, *websocket.Conn) error { return nil },
			response.WithWSErrorHandler(func(_ context.Context, err error) { reported <- err }),
		)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/register", nil)
		require.NoError(t, resp(rec, req))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Error(t, <-reported)
		assert.False(t, response.IsWebSocketUpgrade(req))
	})

	t.Run("upgrade_headers_are_sent", func(t *testing.T) {
		t.Parallel()

		resp := response.WebSocket(
			func(context.Context, *websocket.Conn) error { return nil },
			response.WithWSUpgradeHeaders(http.Header{"X-Request-ID": {"req-1"}}),
			response.WithWSUpgradeHeaders(http.Header{"X-Node": {"a"}}),
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = resp(w, r)
		}))
		defer server.Close()

		conn, httpResp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, "req-1", httpResp.Header.Get("X-Request-ID"))
		assert.Equal(t, "a", httpResp.Header.Get("X-Node"))
	})
}

func TestWithWSAllowedOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		ok      bool
	}{
		{name: "listed_origin", allowed: []string{"https://app.example.com"}, origin: "https://app.example.com", ok: true},
		{name: "unlisted_origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com"},
		{name: "no_origin_header", allowed: []string{"https://app.example.com"}, ok: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example.com", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := response.WebSocket(
				func(context.Context, *websocket.Conn) error { return nil },
				response.WithWSAllowedOrigins(tt.allowed...),
			)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = resp(w, r)
			}))
			defer server.Close()

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, httpResp, err := websocket.DefaultDialer.Dial(wsURL(server), header)
			if tt.ok {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			assert.Equal(t, http.StatusForbidden, httpResp.StatusCode)
		})
	}
}
