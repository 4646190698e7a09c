package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/messenger"
)

// StatsSource is anything that reports messenger statistics, typically *messenger.Messenger.
type StatsSource interface {
	Stats() messenger.Stats
}

// Collector implements prom.Collector over a StatsSource.
type Collector struct {
	source StatsSource

	subscriptions *prom.Desc
	queueDepth    *prom.Desc
	sent          *prom.Desc
	delivered     *prom.Desc
	failed        *prom.Desc
	sweeps        *prom.Desc
	swept         *prom.Desc
	up            *prom.Desc
}

type collectorOptions struct {
	namespace   string
	constLabels prom.Labels
}

// Option configures a Collector.
type Option func(*collectorOptions)

// WithNamespace prefixes every metric name.
func WithNamespace(ns string) Option {
	return func(o *collectorOptions) {
		o.namespace = ns
	}
}

// WithConstLabels attaches labels to every metric, e.g. to tell several messengers apart.
func WithConstLabels(labels prom.Labels) Option {
	return func(o *collectorOptions) {
		o.constLabels = labels
	}
}

// NewCollector creates a Collector reading from source.
func NewCollector(source StatsSource, opts ...Option) *Collector {
	o := &collectorOptions{}
	for _, opt := range opts {
		opt(o)
	}

	desc := func(name, help string) *prom.Desc {
		return prom.NewDesc(prom.BuildFQName(o.namespace, "messenger", name), help, nil, o.constLabels)
	}

	return &Collector{
		source:        source,
		subscriptions: desc("subscriptions", "Registered subscriptions, including dead ones not yet swept."),
		queueDepth:    desc("queue_depth", "Envelopes waiting for the dispatcher."),
		sent:          desc("messages_sent_total", "Envelopes accepted by Send."),
		delivered:     desc("deliveries_total", "Successful handler invocations."),
		failed:        desc("delivery_failures_total", "Delivery failures reported to error handlers."),
		sweeps:        desc("cleanup_sweeps_total", "Cleanup sweeps run."),
		swept:         desc("cleanup_removed_total", "Dead subscriptions removed by cleanup sweeps."),
		up:            desc("up", "Whether the messenger accepts calls."),
	}
}

// Describe implements prom.Collector.
func (c *Collector) Describe(ch chan<- *prom.Desc) {
	ch <- c.subscriptions
	ch <- c.queueDepth
	ch <- c.sent
	ch <- c.delivered
	ch <- c.failed
	ch <- c.sweeps
	ch <- c.swept
	ch <- c.up
}

// Collect implements prom.Collector.
func (c *Collector) Collect(ch chan<- prom.Metric) {
	st := c.source.Stats()

	up := 0.0
	if st.IsRunning {
		up = 1
	}

	ch <- prom.MustNewConstMetric(c.subscriptions, prom.GaugeValue, float64(st.Subscriptions))
	ch <- prom.MustNewConstMetric(c.queueDepth, prom.GaugeValue, float64(st.QueueDepth))
	ch <- prom.MustNewConstMetric(c.sent, prom.CounterValue, float64(st.Sent))
	ch <- prom.MustNewConstMetric(c.delivered, prom.CounterValue, float64(st.Delivered))
	ch <- prom.MustNewConstMetric(c.failed, prom.CounterValue, float64(st.Failed))
	ch <- prom.MustNewConstMetric(c.sweeps, prom.CounterValue, float64(st.Sweeps))
	ch <- prom.MustNewConstMetric(c.swept, prom.CounterValue, float64(st.Swept))
	ch <- prom.MustNewConstMetric(c.up, prom.GaugeValue, up)
}
