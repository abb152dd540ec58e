package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "moderation_analysis_duration_sec",
	Help:    "Duration of a full analysis pipeline run",
	Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"action"})

var moderationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_actions_total",
	Help: "Automated moderation outcomes on the publish path",
}, []string{"action"})

var detectorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "moderation_detector_duration_sec",
	Help:    "Duration of individual detector runs",
	Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25},
}, []string{"category"})

var detectorFaults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_detector_faults_total",
	Help: "Detector runs that errored, panicked or timed out",
}, []string{"category"})

var queueDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_queue_decisions_total",
	Help: "Reviewer decisions applied to queue entries",
}, []string{"decision"})

var decisionConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_decision_conflicts_total",
	Help: "Reviewer decisions rejected because the entry was already resolved",
})

var bulkItems = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_bulk_items_total",
	Help: "Bulk moderation items by outcome",
}, []string{"outcome"})

var cleanupRemoved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_cleanup_removed_total",
	Help: "Closed queue entries removed by retention cleanup",
})
