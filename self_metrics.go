package metrics

import (
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
)

const selfMetricsNamespace = "metricsets"

// selfMetrics instruments the registry's own collection loop.
type selfMetrics struct {
	collectDuration prometheus.Histogram
	queued          prometheus.Counter
	failures        prometheus.Counter
	sets            prometheus.Gauge
}

func newSelfMetrics() *selfMetrics {
	return &selfMetrics{
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: selfMetricsNamespace,
			Name:      "collect_latency_seconds",
			Help:      "Metric set collection cycle latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: selfMetricsNamespace,
			Name:      "samples_queued_total",
			Help:      "Number of samples handed to the queue function",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: selfMetricsNamespace,
			Name:      "collect_failures_total",
			Help:      "Number of metric set collections that failed",
		}),
		sets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: selfMetricsNamespace,
			Name:      "registered_sets",
			Help:      "Number of registered metric sets",
		}),
	}
}

func (m *selfMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.collectDuration, m.queued, m.failures, m.sets}
}

func (m *selfMetrics) register(reg prometheus.Registerer) error {
	var result *multierror.Error
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
