package bus

import (
	"context"
	"time"

	"github.com/dmitrymomot/scsp/pkg/multimap"
)

// Kind identifies the delivery strategy of a handler.
type Kind string

const (
	// KindStreaming handlers are drained by a push loop over a persistent connection.
	KindStreaming Kind = "streaming"
	// KindPolling handlers service exactly one long-poll request.
	KindPolling Kind = "polling"
)

// Handler is a registered subscription on a channel.
// The Bus only relies on this interface and never on the delivery strategy.
type Handler interface {
	// ID is the caller-supplied identity, unique among open handlers of a channel.
	ID() string
	Channel() string
	Kind() Kind

	// Post hands msg to the handler without blocking.
	Post(msg []byte) error
	// Wait blocks for the next message; see Mailbox.Wait.
	Wait(ctx context.Context, timeout time.Duration) ([]byte, bool, error)

	// Close transitions the handler to Closed. Closed is terminal.
	Close()
	IsClosed() bool
	Done() <-chan struct{}
}

// Factory builds a handler for an identity on a channel.
type Factory func(id, channel string) Handler

// mailboxHandler implements Handler on top of a Mailbox.
type mailboxHandler struct {
	*Mailbox

	id      string
	channel string
	kind    Kind
}

// NewStreamingHandler creates an open handler for push delivery.
func NewStreamingHandler(id, channel string) Handler {
	return newMailboxHandler(id, channel, KindStreaming)
}

// NewPollingHandler creates an open handler for one-shot pull delivery.
func NewPollingHandler(id, channel string) Handler {
	return newMailboxHandler(id, channel, KindPolling)
}

func newMailboxHandler(id, channel string, kind Kind) *mailboxHandler {
	return &mailboxHandler{
		Mailbox: NewMailbox(),
		id:      id,
		channel: channel,
		kind:    kind,
	}
}

func (h *mailboxHandler) ID() string      { return h.id }
func (h *mailboxHandler) Channel() string { return h.channel }
func (h *mailboxHandler) Kind() Kind      { return h.kind }

// judgeIdentity evicts a closed handler with identity id and blocks on an open one.
// IsClosed is read once so the verdict is consistent with a concurrent Close.
func judgeIdentity(existing Handler, id string) multimap.Verdict {
	if existing.ID() != id {
		return multimap.Keep
	}
	if existing.IsClosed() {
		return multimap.Evict
	}
	return multimap.Block
}
