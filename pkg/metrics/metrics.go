package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Kafka: события инвентаризации.
var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
)

// Снимок каталога.
var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Product snapshot cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of products currently in the snapshot cache",
		},
	)
)

// Касса.
var (
	CartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_cart_operations_total",
			Help: "Cart mutations by operation and result",
		},
		[]string{"op", "result"}, // op: add|remove|set_quantity|clear|replace; result: ok|rejected
	)
	CartPersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pos_cart_persist_failures_total",
			Help: "Failed writes of terminal state to the state store",
		},
	)
	CheckoutOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkout_outcomes_total",
			Help: "Checkout results by strategy",
		},
		[]string{"strategy", "result"}, // strategy: direct|external
	)
	TerminalsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_terminals_active",
			Help: "Terminals with a live bundle in the registry",
		},
	)
)

// Шлюз к бэкенду.
var (
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_backend_requests_total",
			Help: "Requests to the remote backend by endpoint and status class",
		},
		[]string{"endpoint", "status"},
	)
	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_backend_request_duration_seconds",
			Help:    "Latency of requests to the remote backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует метрики в глобальном реестре; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
			CacheOps, CacheSize,
			CartOperations, CartPersistFailures, CheckoutOutcomes, TerminalsActive,
			GatewayRequests, GatewayLatency,
		)
	})
}
