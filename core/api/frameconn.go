package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// frameConn adapts a WebSocket connection to bus.FrameConn.
// Only one goroutine writes data frames; control frames may be sent concurrently.
type frameConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	done     chan struct{}
	doneOnce sync.Once
}

func newFrameConn(conn *websocket.Conn, writeTimeout time.Duration) *frameConn {
	c := &frameConn{
		conn:         conn,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop discards inbound frames and processes control frames until the
// peer disconnects or the connection is closed locally.
func (c *frameConn) readLoop() {
	defer c.markDone()
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *frameConn) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *frameConn) Done() <-chan struct{} {
	return c.done
}

func (c *frameConn) WriteFrame(msg []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (c *frameConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// Close sends a close frame with code. The underlying connection is closed by its owner.
func (c *frameConn) Close(code int) {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(c.writeTimeout),
	)
	c.markDone()
}
