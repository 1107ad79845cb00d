package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics counts update flow through the dispatcher.
type metrics struct {
	received        *prometheus.CounterVec
	handled         *prometheus.CounterVec
	ignored         *prometheus.CounterVec
	handlerFailures prometheus.Counter
	unknownUpdates  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		received: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maxbot",
			Name:      "updates_received_total",
			Help:      "Updates received from the platform, by type.",
		}, []string{"type"}),
		handled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maxbot",
			Name:      "updates_handled_total",
			Help:      "Updates matched to a handler, by type.",
		}, []string{"type"}),
		ignored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "maxbot",
			Name:      "updates_ignored_total",
			Help:      "Updates no handler matched, by type.",
		}, []string{"type"}),
		handlerFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "maxbot",
			Name:      "handler_failures_total",
			Help:      "Handler and middleware errors contained by the dispatcher.",
		}),
		unknownUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "maxbot",
			Name:      "unknown_updates_total",
			Help:      "Updates skipped because their type is not recognised.",
		}),
	}
}
