package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicCounter is a thread-safe counter. Unlike a monotonic counter it may be
// decremented, and Reset restores the value it was constructed with.
type BasicCounter struct {
	label string

	mu      sync.Mutex
	initial float64
	val     float64
}

// NewCounter constructs a counter whose value starts at (and resets to) initial.
func NewCounter(label string, initial float64) *BasicCounter {
	return &BasicCounter{label: label, initial: initial, val: initial}
}

// Label returns the name the counter was created with.
func (c *BasicCounter) Label() string { return c.label }

// Inc adds one to the counter.
func (c *BasicCounter) Inc() Counter { return c.Add(1) }

// Add adds delta to the counter.
func (c *BasicCounter) Add(delta float64) Counter {
	c.mu.Lock()
	c.val += delta
	c.mu.Unlock()
	return c
}

// Dec subtracts one from the counter.
func (c *BasicCounter) Dec() Counter { return c.Sub(1) }

// Sub subtracts delta from the counter.
func (c *BasicCounter) Sub(delta float64) Counter {
	c.mu.Lock()
	c.val -= delta
	c.mu.Unlock()
	return c
}

// Reset restores the initial value.
func (c *BasicCounter) Reset() Counter {
	c.mu.Lock()
	c.val = c.initial
	c.mu.Unlock()
	return c
}

// Value returns the current value. A counter always has a value.
func (c *BasicCounter) Value() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, true
}

// BasicGauge holds the last value written to it. Reads and writes are atomic.
type BasicGauge struct {
	label string
	val   atomic.Pointer[float64]
}

// NewGauge constructs a gauge with no value.
func NewGauge(label string) *BasicGauge {
	return &BasicGauge{label: label}
}

// Label returns the name the gauge was created with.
func (g *BasicGauge) Label() string { return g.label }

// Set replaces the gauge value. The last writer wins.
func (g *BasicGauge) Set(v float64) { g.val.Store(&v) }

// Value returns the current value, or false if the gauge was never set.
func (g *BasicGauge) Value() (float64, bool) {
	p := g.val.Load()
	if p == nil {
		return 0, false
	}
	return *p, true
}

// NoopMetric satisfies both Counter and Gauge and discards every write.
// It is handed out for names matching an ignore pattern.
type NoopMetric struct{}

var noop = NoopMetric{}

func (NoopMetric) Inc() Counter           { return noop }
func (NoopMetric) Add(float64) Counter    { return noop }
func (NoopMetric) Dec() Counter           { return noop }
func (NoopMetric) Sub(float64) Counter    { return noop }
func (NoopMetric) Reset() Counter         { return noop }
func (NoopMetric) Set(float64)            {}
func (NoopMetric) Value() (float64, bool) { return 0, false }
