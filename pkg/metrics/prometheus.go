package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/scsp/core/bus"
)

const namespace = "scsp"

const (
	// DefaultMaxChannels caps the distinct values of the channel label.
	DefaultMaxChannels = 1000
	// OverflowChannel labels every channel seen after the cap is reached.
	OverflowChannel = "_other"
)

// Option configures Prom.
type Option func(*Prom)

// WithMaxChannels caps the distinct channel label values. Channel names come
// from clients, so an uncapped label lets any client grow the series count.
// Non-positive values keep the default.
func WithMaxChannels(n int) Option {
	return func(p *Prom) {
		if n > 0 {
			p.maxChannels = n
		}
	}
}

// Prom exports bus events to Prometheus from a private registry.
type Prom struct {
	reg *prometheus.Registry

	mu          sync.Mutex
	channels    map[string]struct{}
	maxChannels int

	published  *prometheus.CounterVec
	delivered  *prometheus.CounterVec
	fanout     prometheus.Histogram
	registered *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	evicted    *prometheus.CounterVec
	dropped    *prometheus.CounterVec
}

var _ bus.Metrics = (*Prom)(nil)

// NewProm creates the bus collectors together with the Go runtime and
// process collectors.
func NewProm(opts ...Option) *Prom {
	reg := prometheus.NewRegistry()
	p := &Prom{
		reg:         reg,
		channels:    make(map[string]struct{}),
		maxChannels: DefaultMaxChannels,
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Messages published, by channel.",
		}, []string{"channel"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Messages posted to handler mailboxes, by channel.",
		}, []string{"channel"}),
		fanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_fanout",
			Help:      "Handlers reached by a single publish.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		registered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handlers_registered_total",
			Help:      "Handlers inserted into the registry, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_rejected_total",
			Help:      "Registrations refused because the identity is already open, by kind.",
		}, []string{"kind"}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handlers_evicted_total",
			Help:      "Closed handlers removed from the registry, by channel.",
		}, []string{"channel"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_overwritten_total",
			Help:      "Unconsumed messages replaced by a newer one, by channel.",
		}, []string{"channel"}),
	}

	for _, opt := range opts {
		opt(p)
	}

	reg.MustRegister(
		p.published, p.delivered, p.fanout,
		p.registered, p.rejected, p.evicted, p.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{Registry: p.reg})
}

// Registry returns the underlying registry so callers can add collectors.
func (p *Prom) Registry() *prometheus.Registry { return p.reg }

// TrackChannels exports the value of fn as the scsp_channels gauge.
func (p *Prom) TrackChannels(fn func() int) {
	p.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "channels",
		Help:      "Channels currently known to the registry.",
	}, func() float64 { return float64(fn()) }))
}

// label returns channel, or OverflowChannel once the cap of distinct names is reached.
func (p *Prom) label(channel string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.channels[channel]; ok {
		return channel
	}
	if len(p.channels) >= p.maxChannels {
		return OverflowChannel
	}
	p.channels[channel] = struct{}{}
	return channel
}

func (p *Prom) Published(channel string, delivered int) {
	channel = p.label(channel)
	p.published.WithLabelValues(channel).Inc()
	p.delivered.WithLabelValues(channel).Add(float64(delivered))
	p.fanout.Observe(float64(delivered))
}

func (p *Prom) Registered(kind bus.Kind) {
	p.registered.WithLabelValues(string(kind)).Inc()
}

func (p *Prom) Rejected(kind bus.Kind) {
	p.rejected.WithLabelValues(string(kind)).Inc()
}

func (p *Prom) Evicted(channel string, n int) {
	p.evicted.WithLabelValues(p.label(channel)).Add(float64(n))
}

func (p *Prom) Dropped(channel string) {
	p.dropped.WithLabelValues(p.label(channel)).Inc()
}
