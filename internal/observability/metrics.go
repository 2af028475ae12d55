package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinonia_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "koinonia_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ActiveWebSockets is the gauge of active WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "koinonia_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// FeedEventsTotal counts feed change events processed by the live-update bridge.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinonia_feed_events_total",
		Help: "Total feed change events by type",
	}, []string{"event_type"})

	// FeedRefreshesTotal counts feed snapshot refreshes by outcome.
	FeedRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinonia_feed_refreshes_total",
		Help: "Total feed snapshot refreshes by outcome (applied, stale, failed)",
	}, []string{"outcome"})

	// WebSocketDrops counts messages dropped due to backpressure.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koinonia_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
