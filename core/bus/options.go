package bus

import "log/slog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for bus diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bus) {
		if log != nil {
			b.logger = log
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(b *Bus) {
		if m != nil {
			b.metrics = m
		}
	}
}
