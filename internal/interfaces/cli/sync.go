package cli

import (
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/openipdata/grantfeed/internal/infrastructure/database/redis"
	"github.com/openipdata/grantfeed/internal/infrastructure/messaging/kafka"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/prometheus"
	"github.com/openipdata/grantfeed/internal/pipeline"
)

// newSyncCommand builds "grantfeed sync": discover the given grant years and
// publish a task for every archive the ledger has not seen.  The worker
// fleet picks the tasks up from there.
func newSyncCommand(opts *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "sync <year>...",
		Short: "Enqueue grant years for ingestion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			ledger := redis.NewSyncLedger(redisClient, cfg.Redis.KeyPrefix, logger)

			if reset {
				if err := ledger.Reset(ctx); err != nil {
					return err
				}
			}

			producer := kafka.NewProducer(cfg.Kafka, logger)
			defer producer.Close()

			service := pipeline.NewService(pipeline.ServiceDeps{
				Discovery: pipeline.NewDiscovery(cfg.Source, logger),
				Ledger:    ledger,
				Publisher: producer,
				Metrics:   prometheus.NewMetrics(promclient.NewRegistry()),
				Logger:    logger,
			})

			for _, year := range args {
				published, err := service.EnqueueYear(ctx, year)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d archives enqueued\n", year, published)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false,
		"forget all ledger state before enqueueing (full re-ingestion)")
	return cmd
}
