// Package observability provides metrics and tracing.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "townsquare_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CascadeOperations counts community soft delete and restore cascades by outcome.
	CascadeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_community_cascade_total",
		Help: "Community deactivate/restore cascades by operation and result",
	}, []string{"operation", "result"})

	// CascadeRowsAffected records how many marketplaces and chatrooms a cascade touched.
	CascadeRowsAffected = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "townsquare_community_cascade_rows",
		Help:    "Child rows changed by a community cascade",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"operation", "table"})

	// ProductPurchases counts buy attempts by result.
	ProductPurchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_product_purchases_total",
		Help: "Product buy attempts by result",
	}, []string{"result"})

	// CartPayments counts payments and the items they finalized.
	CartPayments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_cart_payments_total",
		Help: "Cart payments by result",
	}, []string{"result"})

	// CartItemsPaid counts products finalized through payment.
	CartItemsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "townsquare_cart_items_paid_total",
		Help: "Total number of products finalized by payment",
	})

	// AccessDenied counts membership and creator gate rejections.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_access_denied_total",
		Help: "Requests rejected by membership or creator checks",
	}, []string{"gate"})

	// MessageThroughput counts chat messages processed per chatroom and type.
	MessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_message_throughput_total",
		Help: "Total number of chat messages processed",
	}, []string{"chatroom_id", "message_type"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "townsquare_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "townsquare_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordCascade records the outcome of a community cascade.
func RecordCascade(operation string, err error, marketplaces, chatrooms int64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CascadeOperations.WithLabelValues(operation, result).Inc()
	if err == nil {
		CascadeRowsAffected.WithLabelValues(operation, "marketplaces").Observe(float64(marketplaces))
		CascadeRowsAffected.WithLabelValues(operation, "chatrooms").Observe(float64(chatrooms))
	}
}

// RecordChatMessage increments message throughput counters for the chatroom and type.
func RecordChatMessage(chatroomID uint, messageType string) {
	MessageThroughput.WithLabelValues(strconv.FormatUint(uint64(chatroomID), 10), messageType).Inc()
}

// RecordWebSocketEvent increments the WebSocket events counter for the event type.
func RecordWebSocketEvent(eventType string) {
	WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}
