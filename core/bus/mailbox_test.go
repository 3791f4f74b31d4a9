package bus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/scsp/core/bus"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMailbox_PostWait(t *testing.T) {
	t.Parallel()

	t.Run("delivers_posted_message", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		require.NoError(t, mb.Post([]byte{1, 2, 3}))
		assert.True(t, mb.Pending())

		msg, ok, err := mb.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte{1, 2, 3}, msg)
		assert.False(t, mb.Pending(), "slot must be cleared after a take")
	})

	t.Run("second_post_overwrites_unconsumed_first", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		require.NoError(t, mb.Post([]byte("first")))
		require.NoError(t, mb.Post([]byte("second")))

		msg, ok, err := mb.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte("second"), msg)
		assert.Equal(t, uint64(1), mb.Dropped())

		// The first message is gone for good
		_, ok, err = mb.Wait(context.Background(), 20*time.Millisecond)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty_payload_is_a_message", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		require.NoError(t, mb.Post([]byte{}))

		msg, ok, err := mb.Wait(context.Background(), time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("timeout_is_not_an_error", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		start := time.Now()
		msg, ok, err := mb.Wait(context.Background(), 30*time.Millisecond)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, msg)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("wakes_blocked_waiter", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		got := make(chan []byte, 1)
		go func() {
			msg, _, _ := mb.Wait(context.Background(), bus.NoTimeout)
			got <- msg
		}()

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, mb.Post([]byte("hello")))

		select {
		case msg := <-got:
			assert.Equal(t, []byte("hello"), msg)
		case <-time.After(time.Second):
			t.Fatal("waiter was not woken by post")
		}
	})
}

func TestMailbox_Close(t *testing.T) {
	t.Parallel()

	t.Run("wakes_unbounded_wait_promptly", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		errCh := make(chan error, 1)
		go func() {
			_, _, err := mb.Wait(context.Background(), bus.NoTimeout)
			errCh <- err
		}()

		time.Sleep(10 * time.Millisecond)
		mb.Close()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, bus.ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("close did not wake the waiter")
		}
	})

	t.Run("wakes_every_waiter", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := mb.Wait(context.Background(), 5*time.Second)
				assert.ErrorIs(t, err, bus.ErrClosed)
			}()
		}

		time.Sleep(10 * time.Millisecond)
		mb.Close()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("not all waiters woke up")
		}
	})

	t.Run("post_after_close_fails", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		mb.Close()
		mb.Close() // idempotent

		assert.True(t, mb.IsClosed())
		assert.ErrorIs(t, mb.Post([]byte("x")), bus.ErrClosed)

		_, ok, err := mb.Wait(context.Background(), time.Second)
		assert.False(t, ok)
		assert.ErrorIs(t, err, bus.ErrClosed)

		select {
		case <-mb.Done():
		default:
			t.Fatal("done channel must be closed")
		}
	})

	t.Run("closed_wins_over_pending_message", func(t *testing.T) {
		t.Parallel()

		mb := bus.NewMailbox()
		require.NoError(t, mb.Post([]byte("unread")))
		mb.Close()

		_, ok, err := mb.Wait(context.Background(), time.Second)
		assert.False(t, ok)
		assert.ErrorIs(t, err, bus.ErrClosed)
	})
}

func TestMailbox_ContextCancel(t *testing.T) {
	t.Parallel()

	mb := bus.NewMailbox()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, _, err := mb.Wait(ctx, bus.NoTimeout)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancel did not wake the waiter")
	}
}

func TestMailbox_ConcurrentPosters(t *testing.T) {
	t.Parallel()

	mb := bus.NewMailbox()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, mb.Post([]byte{byte(i)}))
		}(i)
	}
	wg.Wait()

	// Exactly one message survives; every other post overwrote or was overwritten
	msg, ok, err := mb.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, msg, 1)
	assert.LessOrEqual(t, mb.Dropped(), uint64(49))

	_, ok, err = mb.Wait(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}
