package notification

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	mutations      *prometheus.CounterVec
	lockWait       prometheus.Histogram
	evaluations    prometheus.Counter
	matchedTargets prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "herald",
			Name:      "config_mutations_total",
			Help:      "Number of configuration mutations by operation and result.",
		}, []string{"op", "result"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "herald",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the configuration lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 9),
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "herald",
			Name:      "evaluations_total",
			Help:      "Number of evaluated notification events.",
		}),
		matchedTargets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "herald",
			Name:      "matched_targets",
			Help:      "Number of targets matched per evaluated event.",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.mutations, m.lockWait, m.evaluations, m.matchedTargets}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

func (m *metrics) observeMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = string(Code(err))
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

func (m *metrics) observeLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *metrics) observeEvaluation(targets int) {
	if m == nil {
		return
	}
	m.evaluations.Inc()
	m.matchedTargets.Observe(float64(targets))
}
