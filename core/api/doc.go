// Package api exposes a bus.Bus over HTTP and WebSocket.
//
// Routes:
//
//	GET  /                                     "scsp"
//	GET  /register?client_id=<id>&channel=<c>  WebSocket push stream, or a long-poll without the upgrade
//	POST /write                                {"channel": "...", "msg": [1,2,3]} publishes msg
//	GET  /info                                 snapshot of the registry
//	GET  /shutdown                             triggers graceful shutdown
//	GET  /health/live, /health/ready           liveness, readiness
//	GET  /metrics                              Prometheus exposition, when a handler is set
//
// Streamed messages are sent as binary frames, one message per frame.
// A long-poll answers {"has_msg": bool, "msg": [...]} after at most the poll
// timeout and closes its registration; clients re-register for the next message.
//
// Basic usage:
//
//	b := bus.New()
//	a := api.New(b, api.WithLogger(log), api.WithShutdownFunc(cancel))
//	srv.Run(ctx, a.Handler())
package api
