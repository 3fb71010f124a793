package metrics

import (
	"context"
	"regexp"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"k8s.io/utils/clock"
)

// Registry owns the registered metric sets, collects them on a background
// timer and forwards every sample to its queue function.
// A Registry is safe for concurrent use.
type Registry struct {
	cfg    *registryConfig
	logger Logger
	clock  clock.WithTicker
	queue  QueueFunc
	self   *selfMetrics

	mu   sync.RWMutex
	sets map[string]MetricSet // by identifier

	timerMu sync.Mutex
	timer   *collectTimer
	stopped bool
}

// NewRegistry constructs a Registry. When a collect interval is configured the
// background timer starts immediately, unless the process topology reports a
// pre-fork master, in which case it starts after the fork.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = newDefaultLogger()
	}
	if cfg.queue == nil {
		cfg.queue = func(string, interface{}) {}
	}
	if cfg.topology == nil {
		cfg.topology = SingleProcess{}
	}
	if cfg.clock == nil {
		cfg.clock = clock.RealClock{}
	}

	r := &Registry{
		cfg:    cfg,
		logger: cfg.logger,
		clock:  cfg.clock,
		queue:  cfg.queue,
		self:   newSelfMetrics(),
		sets:   make(map[string]MetricSet),
	}
	if cfg.registerer != nil {
		if err := r.self.register(cfg.registerer); err != nil {
			r.logger.Warnf("could not register collection metrics: %v", err)
		}
	}

	if cfg.collectInterval > 0 {
		if cfg.topology.IsPreforkMaster() {
			r.logger.Debugf("pre-fork master process, deferring metrics collect timer")
			cfg.topology.AfterFork(r.startCollectTimer)
		} else {
			r.startCollectTimer()
		}
	}
	return r
}

// Register instantiates the metric set known under id and binds it to r.
// Registering an id twice is a no-op. Failures are logged, never returned.
func (r *Registry) Register(id string) {
	r.mu.RLock()
	_, exists := r.sets[id]
	r.mu.RUnlock()
	if exists {
		return
	}

	set, err := r.build(id)
	if err != nil {
		r.logger.Warnf("could not register %s metricset: %v", id, err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// re-check: another goroutine may have won the race while we were building
	if _, ok := r.sets[id]; ok {
		return
	}
	r.sets[id] = set
	r.self.sets.Set(float64(len(r.sets)))
}

// build runs the factory for id outside of r.mu so it may call back into r.
func (r *Registry) build(id string) (set MetricSet, err error) {
	factory, ok := r.cfg.factories[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMetricSet, "metric set %q", id)
	}
	defer func() {
		if rec := recover(); rec != nil {
			set, err = nil, errors.Errorf("factory for %q panicked: %v", id, rec)
		}
	}()
	set = factory(r)
	if set == nil {
		return nil, errors.Errorf("factory for %q returned no metric set", id)
	}
	return set, nil
}

// MetricSet returns the registered metric set for id.
func (r *Registry) MetricSet(id string) (MetricSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[id]
	return set, ok
}

// Tags returns a copy of the static tags the registry was configured with.
func (r *Registry) Tags() map[string]string {
	return maps.Clone(r.cfg.tags)
}

// Collect collects every registered metric set and queues the samples as
// EventKindMetricSet events. A failing set does not stop the others; all
// failures of the cycle are logged and returned together.
func (r *Registry) Collect() error {
	r.logger.Debugf("collecting metrics")
	start := r.clock.Now()
	defer func() { r.self.collectDuration.Observe(r.clock.Since(start).Seconds()) }()

	r.mu.RLock()
	ids := maps.Keys(r.sets)
	sets := maps.Clone(r.sets)
	r.mu.RUnlock()
	slices.Sort(ids)

	var result *multierror.Error
	for _, id := range ids {
		if err := r.collectSet(id, sets[id]); err != nil {
			r.self.failures.Inc()
			r.logger.Errorf("could not collect %s metricset: %v", id, err)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (r *Registry) collectSet(id string, set MetricSet) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Wrapf(ErrCollectPanic, "metric set %q: %v", id, rec)
		}
	}()
	for sample := range set.Collect() {
		r.queue(EventKindMetricSet, sample)
		r.self.queued.Inc()
	}
	return nil
}

// StopCollectTimer cancels the background timer, including one still waiting
// for a fork. It does not wait for an in-flight collection. The registry stays
// usable; only automatic collection stops.
func (r *Registry) StopCollectTimer() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.logger.Debugf("cancelling metrics collect timer")
		r.timer.Cancel()
		r.timer = nil
	}
}

// Shutdown stops the background timer like StopCollectTimer and then waits,
// until ctx is done, for a collection already in progress to finish. After it
// returns nil no timer-driven collection can queue samples any more.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.timerMu.Lock()
	r.stopped = true
	t := r.timer
	r.timer = nil
	r.timerMu.Unlock()
	if t == nil {
		return nil
	}

	r.logger.Debugf("shutting down metrics collect timer")
	t.Cancel()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) startCollectTimer() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.stopped || r.timer != nil {
		return
	}
	r.timer = newCollectTimer(r.clock, r.cfg.collectInterval, func() { _ = r.Collect() })
	r.logger.Debugf("starting metrics collect timer, interval %s", r.cfg.collectInterval)
	r.timer.Start()
}

// ignored reports whether name matches an ignore pattern. A nil registry
// ignores nothing.
func (r *Registry) ignored(name string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.cfg.ignorePatterns {
		if matchesAtStart(p, name) {
			return true
		}
	}
	return false
}

func matchesAtStart(p *regexp.Regexp, s string) bool {
	loc := p.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
