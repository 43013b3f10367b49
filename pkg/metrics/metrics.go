// Package metrics provides Prometheus metrics for the planner service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttemptsTotal tracks login attempts by outcome
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// DocumentLoadsTotal tracks plan document loads by status
	DocumentLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "storage",
			Name:      "loads_total",
			Help:      "Total number of plan document loads by status",
		},
		[]string{"backend", "status"},
	)

	// DocumentSavesTotal tracks plan document saves by status
	DocumentSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "storage",
			Name:      "saves_total",
			Help:      "Total number of plan document saves by status",
		},
		[]string{"backend", "status"},
	)

	// StorageOperationDuration tracks storage operation duration
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "planner",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Duration of storage operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)

	// DocumentSizeBytes tracks the size of the last saved plan document
	DocumentSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "planner",
			Subsystem: "storage",
			Name:      "document_size_bytes",
			Help:      "Size in bytes of the most recently saved plan document",
		},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "planner",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordAuthAttempt records a login attempt outcome
func RecordAuthAttempt(outcome string) {
	AuthAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordDocumentLoad records a plan document load
func RecordDocumentLoad(backend, status string, durationSeconds float64) {
	DocumentLoadsTotal.WithLabelValues(backend, status).Inc()
	StorageOperationDuration.WithLabelValues(backend, "load").Observe(durationSeconds)
}

// RecordDocumentSave records a plan document save
func RecordDocumentSave(backend, status string, durationSeconds float64, sizeBytes int) {
	DocumentSavesTotal.WithLabelValues(backend, status).Inc()
	StorageOperationDuration.WithLabelValues(backend, "save").Observe(durationSeconds)
	if sizeBytes > 0 {
		DocumentSizeBytes.Set(float64(sizeBytes))
	}
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
