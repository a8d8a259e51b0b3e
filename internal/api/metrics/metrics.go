// Package metrics defines and registers all custom Prometheus metrics for
// the chat server. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ConnectionsActive tracks the number of currently admitted sessions.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Number of currently connected, authenticated sessions.",
	},
)

// HandshakesRejectedTotal counts failed WebSocket handshakes.
// Label:
//   - reason: "missing_token", "invalid_token", "user_sync_failed", "upgrade_failed"
var HandshakesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshakes_rejected_total",
		Help:      "Total number of WebSocket handshakes rejected, by reason.",
	},
	[]string{"reason"},
)

// MessagesTotal counts messages accepted by the pipeline (persisted and
// broadcast).
var MessagesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Total number of chat messages persisted and broadcast.",
	},
)

// MessageErrorsTotal counts messages rejected by the pipeline.
// Label:
//   - reason: "unauthenticated", "invalid_content", "storage"
var MessageErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "message_errors_total",
		Help:      "Total number of inbound messages rejected, by reason.",
	},
	[]string{"reason"},
)

// BroadcastDroppedTotal counts events dropped because a recipient's send
// buffer was full or its connection was gone.
var BroadcastDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_dropped_total",
		Help:      "Total number of outbound events dropped for unreachable recipients.",
	},
)

// MessageHandlingDuration measures pipeline latency from receive to
// broadcast.
var MessageHandlingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "message_handling_duration_seconds",
		Help:      "Duration of message handling from receive to broadcast.",
		Buckets:   prometheus.DefBuckets,
	},
)
