package cmd

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/utils/clock"

	metrics "github.com/ygrebnov/metricsets"
	"github.com/ygrebnov/metricsets/queue"
	"github.com/ygrebnov/metricsets/runtimemetrics"
)

const envPrefix = "METRICSETS"

type agentParams struct {
	configPath    string
	flushInterval time.Duration
	metricsAddr   string
	bufferSize    int

	// clock drives collection and flushing; the wall clock when nil.
	clock clock.WithTicker
}

// RootCmd is the root Cobra command that gets called from the main func.
func RootCmd() *cobra.Command {
	v := viper.New()
	params := &agentParams{}

	cmd := &cobra.Command{
		Use:   "metricsagent",
		Short: "metricsagent collects metric sets and prints them as NDJSON.",
		Long: `metricsagent collects the configured metric sets on a fixed interval and
writes every collected sample to stdout as one {"metricset": {...}} line.

Example config file:
collectInterval: 30s
tags:
  service: checkout
ignorePatterns:
  - "golang\\.heap\\.gc\\..*"
metricSets:
  - runtime

Every key can also be set from the environment with the METRICSETS_ prefix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, params.configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runAgent(ctx, cfg, params, cmd.OutOrStdout())
		},
	}

	addFlags(cmd.Flags(), params)
	_ = v.BindPFlag("collectInterval", cmd.Flags().Lookup("collect-interval"))
	return cmd
}

func addFlags(flags *pflag.FlagSet, params *agentParams) {
	flags.StringVar(&params.configPath, "config", "", "Path to a config file (yaml, json or toml)")
	flags.Duration("collect-interval", 30*time.Second, "How often metric sets are collected; 0 disables collection")
	flags.DurationVar(&params.flushInterval, "flush-interval", 10*time.Second, "How often queued samples are written out")
	flags.StringVar(&params.metricsAddr, "metrics-addr", "", "Address to serve the agent's own Prometheus metrics on, empty to disable")
	flags.IntVar(&params.bufferSize, "buffer-size", queue.DefaultCapacity, "Maximum number of samples held between flushes")
}

func loadConfig(v *viper.Viper, path string) (metrics.Config, error) {
	var cfg metrics.Config
	v.SetDefault("metricSets", []string{runtimemetrics.ID})
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}

func runAgent(ctx context.Context, cfg metrics.Config, params *agentParams, out io.Writer) error {
	if params.flushInterval <= 0 {
		return errors.Errorf("flush-interval must be positive, got %s", params.flushInterval)
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	clk := params.clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	buffer := queue.NewBuffer(params.bufferSize)
	promRegistry := prometheus.NewRegistry()
	opts = append(opts,
		metrics.WithQueueFunc(buffer.Enqueue),
		metrics.WithFactories(runtimemetrics.Factories()),
		metrics.WithPrometheusRegisterer(promRegistry),
		metrics.WithLogger(log.WithField("component", "metrics")),
		metrics.WithClock(clk),
	)
	registry := metrics.NewRegistry(opts...)
	defer registry.StopCollectTimer()
	for _, id := range cfg.MetricSets {
		registry.Register(id)
	}
	log.Infof("collecting metric sets %v every %s", registry.ListMetricSets(), cfg.CollectInterval)

	if params.metricsAddr != "" {
		srv := &http.Server{
			Addr:              params.metricsAddr,
			Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ticker := clk.NewTicker(params.flushInterval)
	defer ticker.Stop()
	var dropped, skipped uint64
	for {
		select {
		case <-ctx.Done():
			shutdown(registry)
			return flush(buffer, out, &dropped, &skipped)
		case <-ticker.C():
			if err := flush(buffer, out, &dropped, &skipped); err != nil {
				return err
			}
		}
	}
}

// shutdown stops timer-driven collection and collects once more so values
// recorded since the last tick are flushed too.
func shutdown(registry *metrics.Registry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := registry.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("metrics collection still running at shutdown")
	}
	// failures are logged by the registry
	_ = registry.Collect()
}

func flush(buffer *queue.Buffer, out io.Writer, dropped, skipped *uint64) error {
	if n := buffer.Dropped(); n > *dropped {
		log.Warnf("dropped %d samples, the buffer is too small for the flush interval", n-*dropped)
		*dropped = n
	}
	err := buffer.Flush(out)
	if n := buffer.Skipped(); n > *skipped {
		log.Warnf("skipped %d samples that could not be encoded", n-*skipped)
		*skipped = n
	}
	return err
}
