package bus

import (
	"context"
	"errors"
	"time"
)

// Result is the outcome of a single long-poll.
type Result struct {
	HasMsg bool
	Msg    []byte
}

// Poll performs exactly one wait on h and closes it regardless of the outcome.
// A timeout of NoTimeout waits until a message arrives, h closes, or ctx is done.
//
// A closed handler (for example after bus shutdown) yields an empty Result.
// Context cancellation is returned as an error.
func Poll(ctx context.Context, h Handler, timeout time.Duration) (Result, error) {
	defer h.Close()

	msg, ok, err := h.Wait(ctx, timeout)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return Result{}, nil
		}
		return Result{}, err
	}

	return Result{HasMsg: ok, Msg: msg}, nil
}
