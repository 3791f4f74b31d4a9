package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// NoTimeout makes Wait block until a message arrives, the mailbox closes,
// or the context is canceled.
const NoTimeout time.Duration = 0

// Mailbox is a single-slot, overwrite-on-post buffer that hands one message
// from a publishing goroutine to a waiting consumer.
//
// A Post replaces any unconsumed message: older unread messages are lost.
// Close wakes every goroutine blocked in Wait. Safe for concurrent use.
type Mailbox struct {
	mu    sync.Mutex
	slot  []byte
	ready bool

	// notify carries at most one pending wake-up so Post never blocks.
	notify chan struct{}
	done   chan struct{}
	once   sync.Once

	dropped atomic.Uint64
}

// NewMailbox creates an open, empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post stores msg in the slot, replacing any unconsumed message, and wakes a waiter.
// Returns ErrClosed if the mailbox has been closed.
func (m *Mailbox) Post(msg []byte) error {
	m.mu.Lock()
	if m.isClosed() {
		m.mu.Unlock()
		return ErrClosed
	}

	if m.ready {
		m.dropped.Add(1)
	}
	m.slot = msg
	m.ready = true
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
		// A wake-up is already pending
	}
	return nil
}

// Wait blocks until a message is posted, the timeout elapses, the mailbox is
// closed, or ctx is done. A timeout of NoTimeout waits indefinitely.
//
// It returns (msg, true, nil) on delivery and clears the slot, (nil, false, nil)
// on timeout, ErrClosed once the mailbox is closed, and ctx.Err() on cancellation.
func (m *Mailbox) Wait(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	var expired <-chan time.Time
	if timeout > NoTimeout {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		if msg, ok, err := m.take(); ok || err != nil {
			return msg, ok, err
		}

		select {
		case <-m.notify:
			// Another waiter may consume first; loop and re-check the slot
		case <-m.done:
			return nil, false, ErrClosed
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-expired:
			return nil, false, nil
		}
	}
}

// take consumes the slot if a message is ready.
func (m *Mailbox) take() ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isClosed() {
		return nil, false, ErrClosed
	}
	if !m.ready {
		return nil, false, nil
	}

	msg := m.slot
	m.slot = nil
	m.ready = false
	return msg, true, nil
}

// Close marks the mailbox closed and wakes every waiter. Idempotent.
func (m *Mailbox) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		close(m.done)
		m.slot = nil
		m.ready = false
		m.mu.Unlock()
	})
}

// IsClosed reports whether Close has been called.
func (m *Mailbox) IsClosed() bool {
	return m.isClosed()
}

// Done returns a channel closed when the mailbox is closed.
func (m *Mailbox) Done() <-chan struct{} {
	return m.done
}

// Pending reports whether an unconsumed message sits in the slot.
func (m *Mailbox) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Dropped returns how many messages were overwritten before being consumed.
func (m *Mailbox) Dropped() uint64 {
	return m.dropped.Load()
}

func (m *Mailbox) isClosed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}
