package metrics

import (
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/maps"
	"k8s.io/utils/clock"
)

type registryConfig struct {
	// 0 disables periodic collection.
	collectInterval time.Duration
	queue           QueueFunc
	tags            map[string]string
	ignorePatterns  []*regexp.Regexp
	factories       map[string]Factory
	topology        ProcessTopology
	logger          Logger
	clock           clock.WithTicker
	registerer      prometheus.Registerer
}

// RegistryOption configures a Registry constructed by NewRegistry.
type RegistryOption func(*registryConfig)

// WithCollectInterval sets how often registered metric sets are collected.
// Zero (the default) disables the background timer; Collect can still be
// called directly.
func WithCollectInterval(d time.Duration) RegistryOption {
	return func(cfg *registryConfig) { cfg.collectInterval = d }
}

// WithQueueFunc sets the sink for collected samples.
func WithQueueFunc(fn QueueFunc) RegistryOption {
	return func(cfg *registryConfig) { cfg.queue = fn }
}

// WithTags attaches static process-wide tags. The map is copied.
func WithTags(tags map[string]string) RegistryOption {
	return func(cfg *registryConfig) {
		if len(tags) == 0 {
			return
		}
		if cfg.tags == nil {
			cfg.tags = make(map[string]string, len(tags))
		}
		maps.Copy(cfg.tags, tags)
	}
}

// WithIgnorePatterns appends patterns of metric names that must not be
// recorded. A pattern applies when it matches at the start of the name.
func WithIgnorePatterns(patterns ...*regexp.Regexp) RegistryOption {
	return func(cfg *registryConfig) {
		for _, p := range patterns {
			if p != nil {
				cfg.ignorePatterns = append(cfg.ignorePatterns, p)
			}
		}
	}
}

// WithFactory makes a metric set constructible by Register under id.
func WithFactory(id string, f Factory) RegistryOption {
	return func(cfg *registryConfig) {
		if f == nil {
			return
		}
		if cfg.factories == nil {
			cfg.factories = make(map[string]Factory)
		}
		cfg.factories[id] = f
	}
}

// WithFactories adds every entry of factories, see WithFactory.
func WithFactories(factories map[string]Factory) RegistryOption {
	return func(cfg *registryConfig) {
		for id, f := range factories {
			WithFactory(id, f)(cfg)
		}
	}
}

// WithProcessTopology sets the collaborator deciding whether the background
// timer may start right away or must wait for a fork.
func WithProcessTopology(t ProcessTopology) RegistryOption {
	return func(cfg *registryConfig) { cfg.topology = t }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l Logger) RegistryOption {
	return func(cfg *registryConfig) { cfg.logger = l }
}

// WithClock replaces the wall clock used for timestamps and the collection timer.
func WithClock(c clock.WithTicker) RegistryOption {
	return func(cfg *registryConfig) { cfg.clock = c }
}

// WithPrometheusRegisterer registers the registry's own collection metrics
// on reg.
func WithPrometheusRegisterer(reg prometheus.Registerer) RegistryOption {
	return func(cfg *registryConfig) { cfg.registerer = reg }
}
