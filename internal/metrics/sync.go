package metrics

import "github.com/prometheus/client_golang/prometheus"

// Batch job Prometheus metrics.
var (
	SyncRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pkgdex",
			Name:      "sync_records_total",
			Help:      "Records visited by batch jobs, by outcome",
		},
		[]string{"job", "outcome"}, // outcome: processed / failed / skipped
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pkgdex",
			Name:      "sync_duration_seconds",
			Help:      "Batch job run time in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"job"},
	)
)

var syncMetricsRegistered bool

// RegisterSyncMetrics registers Prometheus batch job metrics. Must be called once from main.
func RegisterSyncMetrics() {
	if syncMetricsRegistered {
		return
	}
	prometheus.MustRegister(SyncRecordsTotal)
	prometheus.MustRegister(SyncDuration)
	syncMetricsRegistered = true
}
