// Package metrics exposes prometheus metrics for the shaping controller.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Apply outcomes recorded on the applies counter.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

// ShapingMetrics tracks policy application activity.
//
// Metrics:
//   - shaperd_policy_applies_total: applies by policy and outcome
//   - shaperd_policy_apply_duration_seconds: apply duration by policy
//   - shaperd_shaping_clears_total: explicit clears
//   - shaperd_active_policy: 1 for the currently active policy per interface
type ShapingMetrics struct {
	registry *prometheus.Registry

	appliesTotal  *prometheus.CounterVec
	applyDuration *prometheus.HistogramVec
	clearsTotal   prometheus.Counter
	activePolicy  *prometheus.GaugeVec
}

// New creates and registers shaping metrics on a fresh registry.
func New(namespace string) *ShapingMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ShapingMetrics{
		registry: registry,

		appliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_applies_total",
				Help:      "Total number of policy apply attempts",
			},
			[]string{"policy", "outcome"},
		),

		applyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "policy_apply_duration_seconds",
				Help:      "Duration of policy application in seconds",
				// Each apply is a handful of tc invocations.
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to 8s
			},
			[]string{"policy"},
		),

		clearsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shaping_clears_total",
				Help:      "Total number of explicit shaping clears",
			},
		),

		activePolicy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_policy",
				Help:      "Set to 1 for the currently active policy on each interface",
			},
			[]string{"interface", "policy"},
		),
	}

	registry.MustRegister(
		m.appliesTotal,
		m.applyDuration,
		m.clearsTotal,
		m.activePolicy,
	)
	return m
}

// RecordApply records one apply attempt.
func (m *ShapingMetrics) RecordApply(policy, outcome string, duration time.Duration) {
	m.appliesTotal.WithLabelValues(policy, outcome).Inc()
	m.applyDuration.WithLabelValues(policy).Observe(duration.Seconds())
}

// RecordClear records an explicit clear.
func (m *ShapingMetrics) RecordClear() {
	m.clearsTotal.Inc()
}

// SetActive marks policy as the active one on iface. An empty policy name
// clears the gauge for the interface.
func (m *ShapingMetrics) SetActive(iface, policy string) {
	m.activePolicy.DeletePartialMatch(prometheus.Labels{"interface": iface})
	if policy != "" {
		m.activePolicy.WithLabelValues(iface, policy).Set(1)
	}
}

// Handler returns the HTTP handler serving the registry.
func (m *ShapingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
