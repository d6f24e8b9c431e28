package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion pipeline

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlbx_api_calls_total",
			Help: "Total number of stats and pitch-feed API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlbx_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Window metrics
	WindowsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlbx_windows_processed_total",
			Help: "Total number of ingestion windows processed",
		},
		[]string{"outcome"},
	)

	WindowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mlbx_window_duration_seconds",
			Help:    "Duration of one window's aggregation in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	WindowFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlbx_window_failures_total",
			Help: "Window failures by reason",
		},
		[]string{"reason"},
	)

	GamesCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlbx_games_collected",
			Help: "Games accumulated in the current ingestion run",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlbx_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlbx_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlbx_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	GamesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlbx_games_stored_total",
			Help: "Total number of game rows in the database",
		},
	)

	// Daily ingest metrics
	DailyIngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlbx_daily_ingests_total",
			Help: "Total number of scheduled daily ingest runs",
		},
		[]string{"status"},
	)

	LastSuccessfulIngest = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlbx_last_successful_ingest_timestamp",
			Help: "Timestamp of the last successful daily ingest",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlbx_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordWindow records one processed window and its duration
func RecordWindow(outcome string, duration float64) {
	WindowsProcessedTotal.WithLabelValues(outcome).Inc()
	WindowDuration.Observe(duration)
}

// RecordWindowFailure records a window failure by reason
func RecordWindowFailure(reason string) {
	WindowFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordDailyIngest records a scheduled daily ingest run
func RecordDailyIngest(status string) {
	DailyIngestsTotal.WithLabelValues(status).Inc()

	if status == "success" {
		LastSuccessfulIngest.SetToCurrentTime()
	}
}
