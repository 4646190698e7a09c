// Package prometheus exports messenger statistics as Prometheus metrics.
//
// The collector reads Messenger.Stats on every scrape, so it adds no work to the
// delivery path.
//
//	import (
//		"github.com/dmitrymomot/messenger/integration/prometheus"
//		prom "github.com/prometheus/client_golang/prometheus"
//	)
//
//	m := messenger.New()
//	reg := prom.NewRegistry()
//	reg.MustRegister(prometheus.NewCollector(m,
//		prometheus.WithNamespace("app"),
//		prometheus.WithConstLabels(prom.Labels{"bus": "ui"}),
//	))
//
// Exported metrics (prefixed with the namespace when set):
//
//	messenger_subscriptions                 gauge
//	messenger_queue_depth                   gauge
//	messenger_messages_sent_total           counter
//	messenger_deliveries_total              counter
//	messenger_delivery_failures_total       counter
//	messenger_cleanup_sweeps_total          counter
//	messenger_cleanup_removed_total         counter
//	messenger_up                            gauge, 1 while the messenger accepts calls
package prometheus
