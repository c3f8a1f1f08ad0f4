package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scoring metrics
	SnapshotsComputed prometheus.Counter
	SnapshotsSkipped  prometheus.Counter
	ScoringDuration   prometheus.Histogram

	// Alerting metrics
	AlertsRaised *prometheus.CounterVec

	// Sweep metrics
	SweepRuns        prometheus.Counter
	SweepUnitsFailed prometheus.Counter
	SweepDuration    prometheus.Histogram
}

// New creates and registers all application metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		SnapshotsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_snapshots_total",
			Help:      "Total number of competency score snapshots produced",
		}),
		SnapshotsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_snapshots_skipped_total",
			Help:      "Recomputations skipped because the window held no signals",
		}),
		ScoringDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Time spent recomputing competency scores per physician",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		AlertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Total number of alerts created or updated",
		}, []string{"type", "severity"}),
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Total number of periodic sweep runs",
		}),
		SweepUnitsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_units_failed_total",
			Help:      "Sweep units of work that failed and were skipped",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of full sweep runs",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		}),
	}
}
