// Package metrics provides a Prometheus-backed observer for the message bus.
// It lives outside the bus package so the core carries no metrics dependency;
// installing it is one option at composition time:
//
//	collector := metrics.New(prometheus.DefaultRegisterer)
//	r := rook.Must(rook.Agents(...), rook.Observer(collector))
package metrics

import (
	"context"
	"time"

	"github.com/casualjim/rook/bus"
	"github.com/prometheus/client_golang/prometheus"
)

var _ bus.Observer = (*Collector)(nil)

// Collector counts bus traffic. All metrics are labeled by topic; per-handler
// metrics also carry the subscriber identity the wiring engine assigned.
type Collector struct {
	publishes  *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	failures   *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates a Collector and registers its metrics on reg. It panics when a
// metric is already registered, same as any double registration.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rook_publishes_total",
				Help: "Total publishes that found at least one subscriber",
			},
			[]string{"topic"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rook_deliveries_total",
				Help: "Total successful handler invocations",
			},
			[]string{"topic", "subscriber"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rook_handler_failures_total",
				Help: "Total handler invocations that returned an error",
			},
			[]string{"topic", "subscriber"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rook_dropped_publishes_total",
				Help: "Total publishes to topics without subscribers",
			},
			[]string{"topic"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rook_handler_duration_seconds",
				Help:    "Duration of successful handler invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic", "subscriber"},
		),
	}
	reg.MustRegister(c.publishes, c.deliveries, c.failures, c.dropped, c.duration)
	return c
}

func (c *Collector) OnPublish(_ context.Context, topic string, _ int) {
	c.publishes.WithLabelValues(topic).Inc()
}

func (c *Collector) OnDeliver(_ context.Context, topic, subscriber string, elapsed time.Duration) {
	c.deliveries.WithLabelValues(topic, subscriber).Inc()
	c.duration.WithLabelValues(topic, subscriber).Observe(elapsed.Seconds())
}

func (c *Collector) OnError(_ context.Context, topic, subscriber string, _ error) {
	c.failures.WithLabelValues(topic, subscriber).Inc()
}

func (c *Collector) OnDrop(_ context.Context, topic string) {
	c.dropped.WithLabelValues(topic).Inc()
}
