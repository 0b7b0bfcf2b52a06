// Package observability owns the Prometheus collectors exported on /metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "befit"

var (
	joinRequestsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "membership",
		Name:      "join_requests_submitted_total",
		Help:      "Join requests accepted into the pending state, labeled by requester role.",
	}, []string{"role"})

	joinRequestDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "membership",
		Name:      "join_request_decisions_total",
		Help:      "Join requests moved out of pending, labeled by resulting status.",
	}, []string{"status"})

	chatMessagesBroadcast = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "messages_broadcast_total",
		Help:      "Chat messages persisted and handed to the hub for broadcast.",
	})

	chatConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "websocket_connections",
		Help:      "Currently registered websocket connections.",
	})

	chatDroppedClients = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "slow_clients_dropped_total",
		Help:      "Connections dropped because their send buffer was full.",
	})

	analyticsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "entries_published_total",
		Help:      "Analytics entries delivered to Kafka.",
	})

	analyticsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "entries_failed_total",
		Help:      "Analytics entries whose delivery failed and will be retried.",
	})

	analyticsBatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "batch_duration_seconds",
		Help:      "Time spent claiming, delivering and marking analytics batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(
		joinRequestsSubmitted,
		joinRequestDecisions,
		chatMessagesBroadcast,
		chatConnections,
		chatDroppedClients,
		analyticsPublished,
		analyticsFailed,
		analyticsBatchDuration,
	)
}

func RecordJoinRequestSubmitted(role string) {
	joinRequestsSubmitted.WithLabelValues(role).Inc()
}

func RecordJoinRequestDecision(status string) {
	joinRequestDecisions.WithLabelValues(status).Inc()
}

func RecordChatBroadcast() {
	chatMessagesBroadcast.Inc()
}

func ChatConnectionOpened() {
	chatConnections.Inc()
}

func ChatConnectionClosed() {
	chatConnections.Dec()
}

func RecordSlowClientDropped() {
	chatDroppedClients.Inc()
}

func RecordAnalyticsPublished(count int) {
	analyticsPublished.Add(float64(count))
}

func RecordAnalyticsFailed(count int) {
	analyticsFailed.Add(float64(count))
}

func ObserveAnalyticsBatch(start time.Time) {
	analyticsBatchDuration.Observe(time.Since(start).Seconds())
}
