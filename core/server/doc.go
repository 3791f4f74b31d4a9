// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server,
//		server.WithLogger(log),
//		server.WithOnShutdown(b.Shutdown),
//	)
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	err = g.Wait()
//
// Config is loaded from SERVER_* environment variables. WriteTimeout bounds
// every plain HTTP response, long-polls included, so it must exceed the poll
// timeout. Hijacked WebSocket connections are not subject to it and are not
// drained by Stop; their owners must close them, which WithOnShutdown enables.
package server
