package server

import "time"

const (
	// DefaultAddr is the listen address of the bus server.
	DefaultAddr = ":6872"

	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds a whole response, so it must exceed the long-poll timeout.
	// Upgraded WebSocket connections are not subject to it.
	DefaultWriteTimeout = 30 * time.Second

	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1 MB
)
