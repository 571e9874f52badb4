package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully handed to the event bus.",
	})

	outboxDrainErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_drain_errors_total",
		Help: "Outbox drain runs that failed.",
	})

	dispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_events_dispatched_total",
		Help: "Consumed bus records by outcome.",
	}, []string{"outcome"})

	dlqReplayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlq_events_replayed_total",
		Help: "Dead-lettered events forwarded back to the bus.",
	})
)
