package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/pkg/multimap"
)

// ChannelSummary is a read-only projection of one channel of the registry.
type ChannelSummary struct {
	Channel  string
	Handlers []string
}

// Bus is an in-memory registry of handlers keyed by channel.
// Safe for concurrent use.
type Bus struct {
	handlers *multimap.Map[string, Handler]
	logger   *slog.Logger
	metrics  Metrics
	shutdown atomic.Bool
}

// New creates an empty Bus. Defaults to a no-op logger and no-op metrics.
func New(opts ...Option) *Bus {
	b := &Bus{
		handlers: multimap.New[string, Handler](),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:  NoopMetrics{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Register builds a handler with factory and inserts it under channel.
//
// If an open handler with the same identity already exists on the channel the
// registry is left untouched: the existing handler keeps receiving messages and
// the returned handler is not registered (inserted == false). Closed handlers
// with the same identity are evicted first, so a client may re-register after
// its previous handler closed.
//
// After Shutdown the returned handler is already closed and never inserted.
func (b *Bus) Register(id, channel string, factory Factory) (h Handler, inserted bool) {
	h = factory(id, channel)

	if b.shutdown.Load() {
		h.Close()
		return h, false
	}

	// Eviction and the duplicate check share one pass under the channel lock
	evicted, inserted := b.handlers.AppendOrEvict(channel, h, func(existing Handler) multimap.Verdict {
		return judgeIdentity(existing, id)
	})
	if evicted > 0 {
		b.metrics.Evicted(channel, evicted)
	}
	if !inserted {
		b.metrics.Rejected(h.Kind())
		b.logger.Debug("identity already registered",
			logger.Component("bus"),
			logger.Channel(channel),
			logger.ClientID(id),
		)
		return h, false
	}

	// Shutdown may have swept the registry between the check and the insert
	if b.shutdown.Load() {
		h.Close()
	}

	b.metrics.Registered(h.Kind())
	b.logger.Debug("handler registered",
		logger.Component("bus"),
		logger.Channel(channel),
		logger.ClientID(id),
		logger.HandlerKind(string(h.Kind())),
	)
	return h, true
}

// Publish evicts closed handlers of channel and posts msg to every remaining one.
// A failing handler never affects its siblings. Returns the number of handlers
// the message was posted to.
func (b *Bus) Publish(ctx context.Context, channel string, msg []byte) int {
	if b.shutdown.Load() {
		return 0
	}

	if n := b.handlers.RemoveIf(channel, Handler.IsClosed); n > 0 {
		b.metrics.Evicted(channel, n)
		b.logger.DebugContext(ctx, "evicted closed handlers",
			logger.Component("bus"),
			logger.Channel(channel),
			logger.Count("evicted", n),
		)
	}

	delivered := 0
	b.handlers.ForEach(channel, func(h Handler) {
		if p, ok := h.(interface{ Pending() bool }); ok && p.Pending() {
			b.metrics.Dropped(channel)
		}

		if err := b.post(h, msg); err != nil {
			b.logger.DebugContext(ctx, "failed to post message",
				logger.Component("bus"),
				logger.Channel(channel),
				logger.ClientID(h.ID()),
				logger.Error(err),
			)
			return
		}
		delivered++
	})

	b.metrics.Published(channel, delivered)
	return delivered
}

// post isolates a single handler so a panicking implementation cannot abort fan-out.
func (b *Bus) post(h Handler, msg []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(ErrSendFailed, panicError(r))
		}
	}()
	return h.Post(msg)
}

// List returns a snapshot of every channel with the identities registered on it,
// ordered by channel name. Closed handlers not yet evicted are included.
func (b *Bus) List() []ChannelSummary {
	keys := b.handlers.Keys()
	sort.Strings(keys)

	summary := make([]ChannelSummary, 0, len(keys))
	for _, channel := range keys {
		ids := make([]string, 0, b.handlers.Len(channel))
		b.handlers.ForEach(channel, func(h Handler) {
			ids = append(ids, h.ID())
		})
		summary = append(summary, ChannelSummary{
			Channel:  channel,
			Handlers: ids,
		})
	}
	return summary
}

// Shutdown closes every registered handler, waking all blocked deliveries.
// Later registrations are rejected and publishes deliver nothing. Idempotent.
func (b *Bus) Shutdown() {
	if b.shutdown.Swap(true) {
		return
	}

	closed := 0
	for _, channel := range b.handlers.Keys() {
		b.handlers.ForEach(channel, func(h Handler) {
			if !h.IsClosed() {
				h.Close()
				closed++
			}
		})
	}

	b.logger.Info("bus shut down",
		logger.Component("bus"),
		logger.Count("closed_handlers", closed),
	)
}

// IsShutdown reports whether Shutdown has been called.
func (b *Bus) IsShutdown() bool {
	return b.shutdown.Load()
}

// Ping reports ErrShutdown once the bus stopped accepting work.
// Backs the readiness check.
func (b *Bus) Ping(context.Context) error {
	if b.shutdown.Load() {
		return ErrShutdown
	}
	return nil
}
