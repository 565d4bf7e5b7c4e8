// Package metrics exposes kinda's transform and chaos-engine counters in
// Prometheus exposition format via promhttp.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds kinda's counters, gauges and histograms. The transform
// pipeline updates ConstructsUsed, SecurityRejects and TransformSeconds;
// nothing in this module updates RNGDraws, InstabilityScore,
// ReplayMismatches or ReplayExhaustion, so they stay at zero.
type Metrics struct {
	registry *prometheus.Registry

	ConstructsUsed   *prometheus.CounterVec
	RNGDraws         prometheus.Counter
	InstabilityScore prometheus.Gauge
	SecurityRejects  *prometheus.CounterVec
	TransformSeconds prometheus.Histogram
	ReplayMismatches prometheus.Counter
	ReplayExhaustion prometheus.Counter
}

// New builds a Metrics registered against its own isolated Prometheus
// registry, so repeated construction in tests never collides with the
// global default registry's duplicate-registration panic.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ConstructsUsed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinda",
			Name:      "constructs_used_total",
			Help:      "Count of each construct rewritten by the transform pipeline, by construct name.",
		}, []string{"construct"}),
		RNGDraws: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "kinda",
			Name:      "rng_draws_total",
			Help:      "Total primitive draws made through the chaos engine's Driver.",
		}),
		InstabilityScore: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "kinda",
			Name:      "instability_score",
			Help:      "Chaos engine's current instability score (consecutive-failure-weighted).",
		}),
		SecurityRejects: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "kinda",
			Name:      "security_rejections_total",
			Help:      "Count of files rejected by the security scanner, by risk level.",
		}, []string{"risk_level"}),
		TransformSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "kinda",
			Name:      "transform_duration_seconds",
			Help:      "Wall-clock duration of a single file's Scan->Emit pipeline run.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReplayMismatches: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "kinda",
			Name:      "replay_mismatches_total",
			Help:      "Count of replay draws that fell back to live randomness due to a mismatch.",
		}),
		ReplayExhaustion: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "kinda",
			Name:      "replay_exhaustion_total",
			Help:      "Count of replay draws that fell back to live randomness due to session exhaustion.",
		}),
	}
	return m
}

// Handler returns an http.Handler serving this Metrics' registry in
// Prometheus exposition format, suitable for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveConstructUsage increments the per-construct counter for every
// construct name in usage, keyed by name, incremented by count.
func (m *Metrics) ObserveConstructUsage(usage map[string]int) {
	for name, count := range usage {
		m.ConstructsUsed.WithLabelValues(name).Add(float64(count))
	}
}

// ObserveSecurityRejection increments the rejection counter for riskLevel.
func (m *Metrics) ObserveSecurityRejection(riskLevel string) {
	m.SecurityRejects.WithLabelValues(riskLevel).Inc()
}
