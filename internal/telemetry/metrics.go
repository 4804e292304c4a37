// Package telemetry is the Metrics component (C12): Prometheus
// counters/histograms for every pipeline stage, plus a health snapshot
// shape mirroring this codebase's admin health endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every counter/histogram the engine exposes on /metrics.
type Metrics struct {
	DiscoveryEvents         *prometheus.CounterVec
	DiscoveryQueueOverflow  *prometheus.CounterVec
	HoneypotChecks          *prometheus.CounterVec
	HoneypotAnalysisMillis  prometheus.Histogram
	DedupDrops              prometheus.Counter
	LeaseFailures           *prometheus.CounterVec
	Executions              *prometheus.CounterVec
	ExecutorStepMillis      *prometheus.HistogramVec
}

// New registers every metric against reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DiscoveryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discovery_events_total",
			Help: "New pool-init events observed per source.",
		}, []string{"source"}),
		DiscoveryQueueOverflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discovery_queue_overflow_total",
			Help: "Dropped discovery events due to a full per-source queue.",
		}, []string{"source"}),
		HoneypotChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeypot_checks_total",
			Help: "Honeypot checks performed, labeled by pass/fail result.",
		}, []string{"result"}),
		HoneypotAnalysisMillis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "honeypot_analysis_duration_ms",
			Help:    "Wall-clock duration of a full honeypot Detect call.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
		DedupDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dedup_drops_total",
			Help: "Events rejected because they were already processed within the dedup window.",
		}),
		LeaseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automation_lease_failure_total",
			Help: "Lease load failures, labeled by reason (missing/expired/decrypt/other).",
		}, []string{"reason"}),
		Executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "executions_total",
			Help: "Completed executions, labeled by terminal state.",
		}, []string{"status"}),
		ExecutorStepMillis: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "executor_duration_ms",
			Help:    "Duration of each executor state-machine step.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		}, []string{"step"}),
	}

	reg.MustRegister(
		m.DiscoveryEvents, m.DiscoveryQueueOverflow, m.HoneypotChecks,
		m.HoneypotAnalysisMillis, m.DedupDrops, m.LeaseFailures,
		m.Executions, m.ExecutorStepMillis,
	)
	return m
}

// HealthSnapshot mirrors this codebase's admin health endpoint shape:
// overall status plus a per-dependency connectivity map.
type HealthSnapshot struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

// Healthy reports Status "ok" when every component is connected.
func Healthy(components map[string]bool) HealthSnapshot {
	status := "ok"
	for _, up := range components {
		if !up {
			status = "degraded"
			break
		}
	}
	return HealthSnapshot{Status: status, Components: components}
}
