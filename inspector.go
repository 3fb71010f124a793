package metrics

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MetricEntry describes one metric of a Set for admin/debug views.
type MetricEntry struct {
	Type   MetricType
	Name   string
	Labels []Label // sorted by name, defensive copy

	// Ignored is true when the metric matched an ignore pattern and records nothing.
	Ignored bool
}

// ListMetricSets returns the identifiers of the registered metric sets, sorted.
func (r *Registry) ListMetricSets() []string {
	r.mu.RLock()
	ids := maps.Keys(r.sets)
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// ListMetrics returns a best-effort snapshot of the metrics created so far,
// sorted by type, name and labels.
func (s *Set) ListMetrics() []MetricEntry {
	counters, gauges := s.snapshot()
	out := make([]MetricEntry, 0, len(counters)+len(gauges))
	for key, sl := range counters {
		out = append(out, newMetricEntry(MetricTypeCounter, key, sl.labels, sl.ignored))
	}
	for key, sl := range gauges {
		out = append(out, newMetricEntry(MetricTypeGauge, key, sl.labels, sl.ignored))
	}
	slices.SortFunc(out, func(a, b MetricEntry) bool {
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return labelsLess(a.Labels, b.Labels)
	})
	return out
}

func newMetricEntry(t MetricType, key metricKey, labels labelKey, ignored bool) MetricEntry {
	return MetricEntry{
		Type:    t,
		Name:    key.name,
		Labels:  slices.Clone(labels.pairs),
		Ignored: ignored,
	}
}

func labelsLess(a, b []Label) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i].Name != b[i].Name {
				return a[i].Name < b[i].Name
			}
			return a[i].Value < b[i].Value
		}
	}
	return len(a) < len(b)
}
