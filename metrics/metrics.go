package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates prometheus metrics for the policy core: conflict
// detection runs, recorded decisions and the policy population per status.
type Collector struct {
	registry          *prometheus.Registry
	conflictRuns      prometheus.Counter
	conflictsFound    *prometheus.CounterVec
	decisionsRecorded *prometheus.CounterVec
	decisionsFailed   prometheus.Counter
	policiesByStatus  *prometheus.GaugeVec
	detectDuration    prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		conflictRuns: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "policy_conflict_detection_runs_total",
			Help: "Total number of conflict detection runs",
		}),
		conflictsFound: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "policy_conflicts_detected_total",
			Help: "Total number of detected rule conflicts",
		}, []string{"severity"}),
		decisionsRecorded: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "policy_decisions_recorded_total",
			Help: "Total number of recorded approver decisions",
		}, []string{"decision"}),
		decisionsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "policy_decisions_failed_total",
			Help: "Total number of rejected decision attempts (invalid actor or closed policy)",
		}),
		policiesByStatus: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "policies_by_status",
			Help: "Number of policies per aggregate approval status",
		}, []string{"status"}),
		detectDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "policy_conflict_detection_duration_seconds",
			Help:    "Time taken by one conflict detection run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordDetection counts one conflict detection run.
func (c *Collector) RecordDetection(seconds float64, errors, warnings int) {
	c.conflictRuns.Inc()
	c.detectDuration.Observe(seconds)
	c.conflictsFound.WithLabelValues("error").Add(float64(errors))
	c.conflictsFound.WithLabelValues("warning").Add(float64(warnings))
}

// RecordDecision counts one decision attempt.
func (c *Collector) RecordDecision(decision string, err error) {
	if err != nil {
		c.decisionsFailed.Inc()
		return
	}
	c.decisionsRecorded.WithLabelValues(decision).Inc()
}

// SetPolicyCount updates the per-status policy population gauge.
func (c *Collector) SetPolicyCount(status string, count int) {
	c.policiesByStatus.WithLabelValues(status).Set(float64(count))
}

// Handler exposes the collector registry in prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
