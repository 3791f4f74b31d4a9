package bus

// Metrics receives bus events. Implementations must be safe for concurrent use
// and must not block.
type Metrics interface {
	// Published is called once per Publish with the number of handlers posted to.
	Published(channel string, delivered int)
	// Registered is called when a handler is inserted into the registry.
	Registered(kind Kind)
	// Rejected is called when a registration collides with an open identity.
	Rejected(kind Kind)
	// Evicted is called when closed handlers are removed from a channel.
	Evicted(channel string, n int)
	// Dropped is called when a post overwrites an unconsumed message.
	Dropped(channel string)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

func (NoopMetrics) Published(string, int) {}
func (NoopMetrics) Registered(Kind)       {}
func (NoopMetrics) Rejected(Kind)         {}
func (NoopMetrics) Evicted(string, int)   {}
func (NoopMetrics) Dropped(string)        {}
