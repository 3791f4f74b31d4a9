package bus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultWaitTimeout bounds each mailbox wait of the push loop so the loop can
// run liveness checks between messages.
const DefaultWaitTimeout = time.Second

// FrameConn is the connection a streaming handler forwards messages over.
type FrameConn interface {
	// WriteFrame sends one message as a single frame.
	WriteFrame(msg []byte) error
	// Done is closed once the connection terminated, by the peer or locally.
	Done() <-chan struct{}
}

type streamConfig struct {
	waitTimeout time.Duration
	ping        func() error
}

// StreamOption configures Stream.
type StreamOption func(*streamConfig)

// WithWaitTimeout sets the bound of each mailbox wait. Non-positive values are ignored.
func WithWaitTimeout(d time.Duration) StreamOption {
	return func(c *streamConfig) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// WithPing sets a liveness check run whenever a wait times out without a message.
// A failing ping ends the stream like a failed send.
func WithPing(fn func() error) StreamOption {
	return func(c *streamConfig) {
		c.ping = fn
	}
}

// Stream runs the push loop of a streaming handler: it waits on the handler's
// mailbox and forwards each message as one frame over conn.
//
// The loop exits when conn terminates, when the handler is closed, when ctx is
// canceled, or when a send fails. The handler is Closed on every exit.
// Returns nil for connection or handler termination, ctx.Err() on cancellation,
// and an error wrapping ErrSendFailed on transport failure.
func Stream(ctx context.Context, h Handler, conn FrameConn, opts ...StreamOption) error {
	cfg := &streamConfig{waitTimeout: DefaultWaitTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	defer h.Close()

	// Cancel the wait as soon as the connection goes away
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-conn.Done():
			cancel()
		case <-waitCtx.Done():
		}
	}()

	for {
		if connClosed(conn) || h.IsClosed() {
			return nil
		}

		msg, ok, err := h.Wait(waitCtx, cfg.waitTimeout)
		switch {
		case errors.Is(err, ErrClosed):
			return nil
		case err != nil:
			if connClosed(conn) {
				return nil
			}
			return err
		case !ok:
			if cfg.ping != nil {
				if err := cfg.ping(); err != nil {
					return fmt.Errorf("%w: ping: %w", ErrSendFailed, err)
				}
			}
			continue
		}

		if err := conn.WriteFrame(msg); err != nil {
			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}
}

func connClosed(conn FrameConn) bool {
	select {
	case <-conn.Done():
		return true
	default:
		return false
	}
}
