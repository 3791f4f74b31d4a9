package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scsp/app"
	"github.com/dmitrymomot/scsp/client"
	"github.com/dmitrymomot/scsp/core/config"
	"github.com/dmitrymomot/scsp/core/logger"
)

func testConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Bus.PollTimeout = 50 * time.Millisecond
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*app.Config)
		valid  bool
	}{
		{name: "defaults", modify: func(*app.Config) {}, valid: true},
		{name: "empty_addr", modify: func(c *app.Config) { c.Server.Addr = "" }},
		{name: "zero_stream_wait", modify: func(c *app.Config) { c.Bus.StreamWaitTimeout = 0 }},
		{name: "poll_exceeds_write_timeout", modify: func(c *app.Config) { c.Bus.PollTimeout = c.Server.WriteTimeout }},
		{name: "unbounded_poll_with_write_timeout", modify: func(c *app.Config) { c.Bus.PollTimeout = 0 }},
		{name: "unbounded_poll_without_write_timeout", modify: func(c *app.Config) {
			c.Bus.PollTimeout = 0
			c.Server.WriteTimeout = 0
		}, valid: true},
		{name: "zero_body_limit", modify: func(c *app.Config) { c.Bus.MaxBodyBytes = 0 }},
		{name: "zero_metrics_channel_cap", modify: func(c *app.Config) { c.Bus.MetricsMaxChannels = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := app.DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, app.ErrInvalidConfig)
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("BUS_POLL_TIMEOUT", "5s")
	t.Setenv("BUS_WS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("BUS_METRICS_MAX_CHANNELS", "50")
	t.Setenv("LOG_LEVEL", "debug")

	var cfg app.Config
	require.NoError(t, config.Load(&cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 5*time.Second, cfg.Bus.PollTimeout)
	assert.Equal(t, time.Second, cfg.Bus.StreamWaitTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Bus.WSAllowedOrigins)
	assert.Equal(t, 50, cfg.Bus.MetricsMaxChannels)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Env)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bus.MaxBodyBytes = -1

	_, err := app.New(app.WithConfig(cfg), app.WithLogger(logger.Discard()))
	require.ErrorIs(t, err, app.ErrInvalidConfig)

	_, err = app.New(app.WithConfig(testConfig()), app.WithLogger(nil))
	require.ErrorIs(t, err, app.ErrNilOption)
}

func TestApp_RunAndShutdownEndpoint(t *testing.T) {
	t.Parallel()

	a, err := app.New(app.WithConfig(testConfig()), app.WithLogger(logger.Discard()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case <-a.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	c, err := client.New("http://" + a.Addr())
	require.NoError(t, err)
	ctx := context.Background()

	res, err := c.PollOnce(ctx, "client-1", "development")
	require.NoError(t, err)
	assert.False(t, res.HasMsg)

	require.NoError(t, c.Write(ctx, "development", []byte{1, 2, 3}))

	info, err := c.Info(ctx)
	require.NoError(t, err)
	require.Len(t, info.Channels, 1)
	assert.Equal(t, "development", info.Channels[0].Channel)

	require.NoError(t, c.Shutdown(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, a.Bus().IsShutdown())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	a, err := app.New(app.WithConfig(testConfig()), app.WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	<-a.Ready()

	// A pending stream must not hold the shutdown
	c, err := client.New("http://" + a.Addr())
	require.NoError(t, err)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- c.Stream(context.Background(), "client-1", "development", func(context.Context, []byte) error { return nil })
	}()
	require.Eventually(t, func() bool {
		info, err := c.Info(context.Background())
		return err == nil && len(info.Channels) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	select {
	case err := <-streamDone:
		require.ErrorIs(t, err, client.ErrTransport)
	case <-time.After(3 * time.Second):
		t.Fatal("stream was not closed")
	}
}

func TestApp_WebSocketOriginsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bus.WSAllowedOrigins = []string{"https://app.example.com"}

	a, err := app.New(app.WithConfig(cfg), app.WithLogger(logger.Discard()))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler(func() {}))
	t.Cleanup(func() {
		a.Bus().Shutdown()
		srv.Close()
	})

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	u := c.StreamURL("client-1", "development")

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://evil.example.com"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://app.example.com"}})
	require.NoError(t, err)
	conn.Close()
}
