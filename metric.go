package metrics

import "iter"

// Counter records a value that moves by explicit deltas.
// Methods must be safe for concurrent use. Mutators return the counter
// itself so calls can be chained.
type Counter interface {
	Inc() Counter
	Add(delta float64) Counter
	Dec() Counter
	Sub(delta float64) Counter
	Reset() Counter
	Value() (float64, bool)
}

// Gauge records the last value written to it.
// Methods must be safe for concurrent use.
type Gauge interface {
	Set(v float64)
	Value() (float64, bool)
}

// MetricSet is a named bundle of counters and gauges belonging to one
// subsystem. Concrete sets usually embed *Set.
type MetricSet interface {
	Counter(name string, labels Labels) Counter
	Gauge(name string, labels Labels) Gauge
	Collect() iter.Seq[Sample]
}

// Factory builds a metric set bound to the registry it is registered with.
type Factory func(r *Registry) MetricSet

// MetricType distinguishes counters from gauges in listings.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

func (t MetricType) String() string { return string(t) }
