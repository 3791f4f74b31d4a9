// Package health provides liveness and readiness check handlers.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log, b.Ping))
//
// Checks follow the func(context.Context) error signature, so any Ping method fits.
package health
