package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RuleOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_operations_total",
			Help: "Total number of rule operations (count)",
		},
		[]string{"operation", "status"},
	)

	RuleValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_validation_failures_total",
			Help: "Total number of rule submissions rejected by validation (count)",
		},
		[]string{"operation"},
	)

	RulesImportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_imported_total",
			Help: "Total number of rules processed by import (count)",
		},
		[]string{"rule_type", "status"},
	)

	RulesExportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_exported_total",
			Help: "Total number of rules written by export (count)",
		},
		[]string{"rule_type"},
	)

	ActiveRulesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_rules",
			Help: "Number of active rules by type (count)",
		},
		[]string{"rule_type"},
	)

	DictionaryCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dictionary_cache_hits_total",
			Help: "Total number of dictionary lookups served from a cache layer (count)",
		},
		[]string{"source"},
	)

	DictionaryCacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dictionary_cache_misses_total",
			Help: "Total number of dictionary cache misses per layer (count)",
		},
		[]string{"source"},
	)

	DictionaryRefreshDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dictionary_refresh_duration_ms",
			Help:    "Duration of dictionary refresh operations in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	KafkaMessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_published_total",
			Help: "Total number of messages published to Kafka (count)",
		},
		[]string{"topic", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests (count)",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"method", "path"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)
)

func RegisterRuleMetrics() {
	prometheus.MustRegister(RuleOperationsTotal)
	prometheus.MustRegister(RuleValidationFailuresTotal)
	prometheus.MustRegister(RulesImportedTotal)
	prometheus.MustRegister(RulesExportedTotal)
	prometheus.MustRegister(ActiveRulesGauge)
}

func RegisterDictionaryMetrics() {
	prometheus.MustRegister(DictionaryCacheHits)
	prometheus.MustRegister(DictionaryCacheMisses)
	prometheus.MustRegister(DictionaryRefreshDuration)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(KafkaMessagesPublished)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterHTTPMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}

func RegisterDatabaseMetrics() {
	prometheus.MustRegister(DatabaseQueriesTotal)
	prometheus.MustRegister(DatabaseQueryDuration)
}

func IncRuleOperation(operation, status string) {
	RuleOperationsTotal.WithLabelValues(operation, status).Inc()
}

func IncRuleValidationFailure(operation string) {
	RuleValidationFailuresTotal.WithLabelValues(operation).Inc()
}

func IncRulesImported(ruleType, status string) {
	RulesImportedTotal.WithLabelValues(ruleType, status).Inc()
}

func SetActiveRules(ruleType string, count int) {
	ActiveRulesGauge.WithLabelValues(ruleType).Set(float64(count))
}

func ObserveDictionaryRefresh(status string, duration time.Duration) {
	DictionaryRefreshDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}
