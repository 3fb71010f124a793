package metrics

import (
	"iter"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"k8s.io/utils/clock"
)

// Set is the reference MetricSet. Counters and gauges are created on first
// access per (name, labels) and live as long as the set.
// A Set is safe for concurrent use.
type Set struct {
	registry      *Registry
	clock         clock.PassiveClock
	beforeCollect func()

	// mu serializes creation in both maps.
	mu       sync.Mutex
	counters map[metricKey]slot[Counter]
	gauges   map[metricKey]slot[Gauge]
}

type slot[M any] struct {
	metric  M
	labels  labelKey
	ignored bool
}

// SetOption configures a Set constructed by NewSet.
type SetOption func(*Set)

// WithBeforeCollect installs a hook run at the start of every collection,
// typically used to refresh gauges just in time.
func WithBeforeCollect(fn func()) SetOption {
	return func(s *Set) { s.beforeCollect = fn }
}

// NewSet constructs a Set bound to r. r may be nil, in which case nothing is
// ignored and the wall clock is used.
func NewSet(r *Registry, opts ...SetOption) *Set {
	s := &Set{
		registry: r,
		clock:    clock.RealClock{},
		counters: make(map[metricKey]slot[Counter]),
		gauges:   make(map[metricKey]slot[Gauge]),
	}
	if r != nil {
		s.clock = r.clock
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	return s
}

// Counter returns the counter for name and labels, creating it if needed.
// Names matching an ignore pattern of the registry get a NoopMetric.
func (s *Set) Counter(name string, labels Labels) Counter {
	lk := newLabelKey(labels)
	key := metricKey{name: name, labels: lk.id}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.counters[key]; ok {
		return sl.metric
	}
	sl := slot[Counter]{labels: lk}
	if s.registry.ignored(name) {
		sl.metric, sl.ignored = noop, true
	} else {
		sl.metric = NewCounter(name, 0)
	}
	s.counters[key] = sl
	return sl.metric
}

// Gauge returns the gauge for name and labels, creating it if needed.
// Names matching an ignore pattern of the registry get a NoopMetric.
func (s *Set) Gauge(name string, labels Labels) Gauge {
	lk := newLabelKey(labels)
	key := metricKey{name: name, labels: lk.id}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.gauges[key]; ok {
		return sl.metric
	}
	sl := slot[Gauge]{labels: lk}
	if s.registry.ignored(name) {
		sl.metric, sl.ignored = noop, true
	} else {
		sl.metric = NewGauge(name)
	}
	s.gauges[key] = sl
	return sl.metric
}

type sampleGroup struct {
	labels  labelKey
	samples map[string]SampleValue
}

// Collect returns a sequence of samples, one per distinct label set that has
// at least one non-ignored metric. Work happens lazily when the sequence is
// ranged over; each pass is a fresh collection.
//
// Values are read without stopping writers, so a sample is a best-effort
// point-in-time view.
func (s *Set) Collect() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		timestamp := s.clock.Now().UnixMicro()
		if s.beforeCollect != nil {
			s.beforeCollect()
		}

		counters, gauges := s.snapshot()
		groups := make(map[string]*sampleGroup)
		add := func(key metricKey, labels labelKey, v SampleValue) {
			g, ok := groups[key.labels]
			if !ok {
				g = &sampleGroup{labels: labels, samples: make(map[string]SampleValue)}
				groups[key.labels] = g
			}
			g.samples[key.name] = v
		}
		for key, sl := range counters {
			if !sl.ignored {
				add(key, sl.labels, valueOf(sl.metric.Value()))
			}
		}
		for key, sl := range gauges {
			if !sl.ignored {
				add(key, sl.labels, valueOf(sl.metric.Value()))
			}
		}

		ids := maps.Keys(groups)
		slices.Sort(ids)
		for _, id := range ids {
			g := groups[id]
			if !yield(Sample{Samples: g.samples, Timestamp: timestamp, Tags: g.labels.tags()}) {
				return
			}
		}
	}
}

// snapshot copies both maps so values can be read without holding mu.
func (s *Set) snapshot() (map[metricKey]slot[Counter], map[metricKey]slot[Gauge]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.counters), maps.Clone(s.gauges)
}
