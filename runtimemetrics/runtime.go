// Package runtimemetrics provides a metric set reporting Go runtime statistics.
package runtimemetrics

import (
	"runtime"

	metrics "github.com/ygrebnov/metricsets"
)

// ID is the identifier the runtime metric set is registered under.
const ID = "runtime"

// Factories returns the factory catalog entry for the runtime metric set.
func Factories() map[string]metrics.Factory {
	return map[string]metrics.Factory{ID: New}
}

// MetricSet samples runtime.MemStats and the goroutine count right before
// every collection.
type MetricSet struct {
	*metrics.Set

	readMemStats func(*runtime.MemStats)
	numGoroutine func() int

	goroutines    metrics.Gauge
	mallocs       metrics.Gauge
	frees         metrics.Gauge
	liveObjects   metrics.Gauge
	totalAlloc    metrics.Gauge
	heapAlloc     metrics.Gauge
	heapIdle      metrics.Gauge
	heapSys       metrics.Gauge
	nextGC        metrics.Gauge
	numGC         metrics.Gauge
	pauseTotalNs  metrics.Gauge
	gcCPUFraction metrics.Gauge
}

// New is a metrics.Factory.
func New(r *metrics.Registry) metrics.MetricSet {
	return newMetricSet(r, runtime.ReadMemStats, runtime.NumGoroutine)
}

func newMetricSet(r *metrics.Registry, readMemStats func(*runtime.MemStats), numGoroutine func() int) *MetricSet {
	m := &MetricSet{readMemStats: readMemStats, numGoroutine: numGoroutine}
	m.Set = metrics.NewSet(r, metrics.WithBeforeCollect(m.refresh))

	m.goroutines = m.Gauge("golang.goroutines", nil)
	m.mallocs = m.Gauge("golang.heap.allocations.mallocs", nil)
	m.frees = m.Gauge("golang.heap.allocations.frees", nil)
	m.liveObjects = m.Gauge("golang.heap.allocations.objects", nil)
	m.totalAlloc = m.Gauge("golang.heap.allocations.total", nil)
	m.heapAlloc = m.Gauge("golang.heap.allocations.allocated", nil)
	m.heapIdle = m.Gauge("golang.heap.memory.idle", nil)
	m.heapSys = m.Gauge("golang.heap.memory.obtained", nil)
	m.nextGC = m.Gauge("golang.heap.gc.next_gc_limit", nil)
	m.numGC = m.Gauge("golang.heap.gc.total_count", nil)
	m.pauseTotalNs = m.Gauge("golang.heap.gc.total_pause.ns", nil)
	m.gcCPUFraction = m.Gauge("golang.heap.gc.cpu_fraction", nil)
	return m
}

func (m *MetricSet) refresh() {
	var ms runtime.MemStats
	m.readMemStats(&ms)

	m.goroutines.Set(float64(m.numGoroutine()))
	m.mallocs.Set(float64(ms.Mallocs))
	m.frees.Set(float64(ms.Frees))
	m.liveObjects.Set(float64(ms.HeapObjects))
	m.totalAlloc.Set(float64(ms.TotalAlloc))
	m.heapAlloc.Set(float64(ms.HeapAlloc))
	m.heapIdle.Set(float64(ms.HeapIdle))
	m.heapSys.Set(float64(ms.HeapSys))
	m.nextGC.Set(float64(ms.NextGC))
	m.numGC.Set(float64(ms.NumGC))
	m.pauseTotalNs.Set(float64(ms.PauseTotalNs))
	m.gcCPUFraction.Set(ms.GCCPUFraction)
}
