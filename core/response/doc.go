// Package response provides the handler.Response constructors used by the HTTP API.
//
// A handler returns a Response; the router executes it and routes any returned
// error to its error handler:
//
//	func info(ctx *router.Context) handler.Response {
//		return response.JSON(wire.Info{Channels: ...})
//	}
//
//	func write(ctx *router.Context) handler.Response {
//		if err := decode(ctx.Request()); err != nil {
//			return response.Error(response.ErrBadRequest.WithError(err))
//		}
//		return response.NoContent()
//	}
//
// JSONErrorHandler renders errors as {"code": ..., "message": ..., "details": ...}
// using the status of an HTTPError, or of any error exposing StatusCode() int.
//
// WebSocket upgrades the request and hands the connection to a session function.
// Upgrade failures are answered by gorilla/websocket and reported through
// WithWSErrorHandler.
package response
