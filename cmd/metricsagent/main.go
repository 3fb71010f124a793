package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ygrebnov/metricsets/cmd/metricsagent/cmd"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if err := cmd.RootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
