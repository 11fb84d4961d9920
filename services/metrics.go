package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recordsDeletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reception_records_deleted_total",
		Help: "Total number of reception records soft-deleted.",
	})
	recordsRestoredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reception_records_restored_total",
		Help: "Total number of reception records restored.",
	})
	mutationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reception_mutation_failures_total",
		Help: "Total number of failed delete/restore statements.",
	}, []string{"action"})
	detectionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reception_duplicate_detection_seconds",
		Help:    "Duration of duplicate detection queries.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	duplicateGroupsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reception_duplicate_groups",
		Help: "Duplicate groups found by the last scheduled report.",
	}, []string{"type"})
	duplicateRecordsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reception_duplicate_records",
		Help: "Records in duplicate groups found by the last scheduled report.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		recordsDeletedCounter,
		recordsRestoredCounter,
		mutationFailures,
		detectionDuration,
		duplicateGroupsGauge,
		duplicateRecordsGauge,
	)
}
