// Package bus implements an in-memory publish/subscribe registry with
// single-slot delivery.
//
// A Bus maps channels to handlers. Each Handler owns a Mailbox holding at most
// one unconsumed message: publishing overwrites whatever the subscriber has not
// read yet (last write wins). Handlers move from Open to Closed exactly once;
// closed handlers stay in the registry until the next publish on their channel
// evicts them.
//
// Two delivery adapters drain handlers:
//
//   - Stream runs a push loop over a persistent connection until the
//     connection, the handler, or the context ends.
//   - Poll waits once and closes the handler, so every long-poll request
//     registers a fresh handler.
//
// # Usage
//
//	b := bus.New(bus.WithLogger(log))
//
//	// Push subscriber
//	h, _ := b.Register("client-1", "development", bus.NewStreamingHandler)
//	go bus.Stream(ctx, h, conn)
//
//	// One-shot subscriber
//	h, _ = b.Register("client-2", "development", bus.NewPollingHandler)
//	res, err := bus.Poll(ctx, h, 10*time.Second)
//
//	// Fan-out
//	b.Publish(ctx, "development", []byte{1, 2, 3})
//
//	// Introspection
//	for _, ch := range b.List() {
//		fmt.Println(ch.Channel, ch.Handlers)
//	}
//
// Registering an identity that is still open on the channel leaves the
// registry untouched; the returned handler is not inserted and will never
// receive messages. Callers should check the inserted result.
package bus
