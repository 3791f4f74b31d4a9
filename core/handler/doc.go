// Package handler defines the typed request-handling contract shared by the
// router, the middleware and the API handlers.
//
// A handler does not write to the response directly. It returns a Response
// that the router executes, which keeps decisions testable and lets
// middleware decorate the rendering step:
//
//	func info(ctx *router.Context) handler.Response {
//		return response.JSON(summary)
//	}
//
// Middleware wraps a HandlerFunc and may enrich the context before calling next:
//
//	func tag[C handler.Context](next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//		return func(ctx C) handler.Response {
//			ctx.SetValue(tagKey{}, "api")
//			return next(ctx)
//		}
//	}
package handler
