// Package client talks to an scsp server.
//
// It mirrors the two delivery strategies of the server: Stream keeps one
// WebSocket open and receives every message as a binary frame, Poll repeats
// long-poll requests and re-registers after each one.
//
//	c, err := client.New("http://127.0.0.1:6872")
//	if err != nil {
//		return err
//	}
//	err = c.Stream(ctx, "client-1", "development", func(ctx context.Context, msg []byte) error {
//		fmt.Println(len(msg))
//		return nil
//	})
//
// Errors fall into two categories: ErrTransport for connection, handshake and
// I/O failures, ErrHandler for failures returned by the callback. Nothing is
// retried automatically.
package client
