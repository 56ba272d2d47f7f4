// worker is the background ingestion process.  It consumes archive tasks
// from Kafka and runs each one through the full pipeline: download, unpack,
// extract, persist, retain, mark the ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/interfaces/cli"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: environment variables only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.RunWorker(ctx, cfg, logger.Named("worker"))
}
