/*
Package metrics is an in-process metrics aggregation engine for an
instrumentation agent.

# Overview

Application code records values into labeled counters and gauges grouped in
metric sets. A Registry owns the metric sets, snapshots them on a background
timer and hands every snapshot to a queue function supplied by the transport.

	r := metrics.NewRegistry(
	  metrics.WithCollectInterval(30*time.Second),
	  metrics.WithQueueFunc(buffer.Enqueue),
	  metrics.WithFactory("http", func(r *metrics.Registry) metrics.MetricSet { return metrics.NewSet(r) }),
	)
	r.Register("http")

	set, _ := r.MetricSet("http")
	set.Counter("requests.count", metrics.Labels{"method": "GET"}).Inc()
	set.Gauge("connections.open", nil).Set(12)

# Metric sets

Set is the reference MetricSet. Counters and gauges are created lazily on
first access per (name, labels) under one set-level mutex and cached for the
life of the set. Labels are canonicalized by sorting on the label name, so
the same labels given in any order resolve to the same metric. Names matching
one of the registry's ignore patterns get a NoopMetric, which accepts every
write and never reports a value; callers never need to check.

Collect groups the non-ignored metrics of a set by label set and yields one
Sample per group:

	{"samples": {"requests.count": {"value": 3}}, "timestamp": 1700000000000000, "tags": {"method": "GET"}}

The timestamp is taken once per collection, in microseconds since the epoch.
Tags are omitted for metrics without labels. A hook installed with
WithBeforeCollect runs at the start of every collection and is the place to
refresh gauges.

# Registry

Metric sets are registered by identifier from a factory catalog supplied at
construction (WithFactory, WithFactories). Unknown identifiers are logged and
ignored. Collect visits every set, isolating panics per set, and queues the
samples as EventKindMetricSet events.

In pre-fork servers the collect timer must not start in the master process.
Pass a PreforkHook with WithProcessTopology and call Forked from the worker's
post-fork hook; the timer starts then.

# Concurrency

  - Counter mutators take the counter's own mutex and never contend with
    metric creation.
  - Gauge values are stored atomically; the last writer wins.
  - Collect does not stop writers, so a sample is a best-effort point-in-time
    view rather than a transaction.
  - StopCollectTimer never waits for a collection in progress.

# Self metrics

The registry reports its own collection latency, queued samples, failures and
registered sets as Prometheus collectors, registered with
WithPrometheusRegisterer.
*/
package metrics
