package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when posting to or waiting on a closed handler.
	ErrClosed = errors.New("bus: handler closed")

	// ErrShutdown is returned by operations attempted after Shutdown.
	ErrShutdown = errors.New("bus: shut down")

	// ErrSendFailed wraps a transport failure while forwarding a frame.
	ErrSendFailed = errors.New("bus: send failed")
)

// panicError converts a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
