// Package middleware provides typed handler.Middleware for the HTTP API:
// request IDs, request logging and request body limits.
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//	)
//	r.Group(func(g router.Router[*router.Context]) {
//		g.Use(middleware.BodyLimitWithSize[*router.Context](middleware.MB))
//		g.Post("/write", write)
//	})
//
// RequestID stores the ID in the request context. Combine it with
// RequestIDExtractor so every record logged with that context carries it:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor()))
//
// Logging wraps the response writer to capture status and size. The wrapper
// supports hijacking, so WebSocket upgrades are logged with status 101 once the
// session ends.
package middleware
