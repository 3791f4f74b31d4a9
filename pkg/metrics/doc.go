// Package metrics exports bus activity as Prometheus metrics.
//
// Prom implements bus.Metrics on a private registry so several buses, or
// tests, never collide on the global default registry:
//
//	prom := metrics.NewProm()
//	b := bus.New(bus.WithMetrics(prom))
//	prom.TrackChannels(func() int { return len(b.List()) })
//	mux.Mount("/metrics", prom.Handler())
//
// Channel names come from clients and become the channel label. Each distinct
// name is a new series, so the label is capped by WithMaxChannels (default
// DefaultMaxChannels). Channels first seen after the cap is reached are
// counted under OverflowChannel.
package metrics
