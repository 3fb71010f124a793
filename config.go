package metrics

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// Config is the file/environment form of the registry configuration.
// Field tags follow the mapstructure conventions used by viper.
type Config struct {
	CollectInterval time.Duration     `mapstructure:"collectInterval"`
	Tags            map[string]string `mapstructure:"tags"`
	// IgnorePatterns are regular expressions matched at the start of metric names.
	IgnorePatterns []string `mapstructure:"ignorePatterns"`
	// MetricSets lists the identifiers to register at startup.
	MetricSets []string `mapstructure:"metricSets"`
}

// Validate reports configuration values the registry cannot use.
func (c Config) Validate() error {
	if c.CollectInterval < 0 {
		return errors.Errorf("collectInterval must not be negative, got %s", c.CollectInterval)
	}
	return nil
}

// Options validates c and converts it into registry options.
func (c Config) Options() ([]RegistryOption, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	patterns := make([]*regexp.Regexp, 0, len(c.IgnorePatterns))
	for _, p := range c.IgnorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ignore pattern %q", p)
		}
		patterns = append(patterns, re)
	}
	return []RegistryOption{
		WithCollectInterval(c.CollectInterval),
		WithTags(c.Tags),
		WithIgnorePatterns(patterns...),
	}, nil
}
