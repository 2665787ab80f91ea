package metrics

import "github.com/prometheus/client_golang/prometheus"

// Store and ingest Prometheus metrics.
var (
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "comparables",
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "op"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comparables",
			Name:      "store_errors_total",
			Help:      "Total store errors",
		},
		[]string{"backend", "op", "error_type"},
	)

	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comparables",
			Name:      "ingest_records_total",
			Help:      "Records processed by batch loads",
		},
		[]string{"outcome"}, // "inserted" / "updated" / "rejected"
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "comparables",
			Name:      "search_results",
			Help:      "Number of comparables returned per filter request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	PropertiesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "comparables",
			Name:      "properties_stored",
			Help:      "Stored property count after the last write",
		},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers store and ingest metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreOperationDuration)
	prometheus.MustRegister(StoreErrorsTotal)
	prometheus.MustRegister(IngestRecordsTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(PropertiesStored)
	storeMetricsRegistered = true
}
