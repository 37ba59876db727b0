// Package metrics registers the Prometheus metrics for the generation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StagesTotal counts pipeline stage outcomes.
	StagesTotal *prometheus.CounterVec

	// StageDuration tracks per-stage wall time.
	StageDuration *prometheus.HistogramVec

	// BreakerTrips counts image quota breaker trips.
	BreakerTrips prometheus.Counter

	// PublishTotal counts CMS publish outcomes.
	PublishTotal *prometheus.CounterVec
)

func init() {
	StagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artigogenio",
			Subsystem: "pipeline",
			Name:      "stages_total",
			Help:      "Total pipeline stage executions",
		},
		[]string{"stage", "status"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "artigogenio",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)

	BreakerTrips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "artigogenio",
			Subsystem: "images",
			Name:      "quota_breaker_trips_total",
			Help:      "Total image quota breaker trips",
		},
	)

	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artigogenio",
			Subsystem: "publish",
			Name:      "total",
			Help:      "Total CMS publish attempts",
		},
		[]string{"status"},
	)

	prometheus.MustRegister(StagesTotal, StageDuration, BreakerTrips, PublishTotal)
}

// StageObserver adapts the metrics to the pipeline's Observer interface.
type StageObserver struct{}

// StageCompleted records one stage outcome.
func (StageObserver) StageCompleted(stage string, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	StagesTotal.WithLabelValues(stage, status).Inc()
	if seconds > 0 {
		StageDuration.WithLabelValues(stage).Observe(seconds)
	}
}
