package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/openipdata/grantfeed/internal/infrastructure/database/postgres"
	"github.com/openipdata/grantfeed/internal/infrastructure/database/postgres/repositories"
	"github.com/openipdata/grantfeed/internal/infrastructure/database/redis"
	"github.com/openipdata/grantfeed/internal/infrastructure/messaging/kafka"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/openipdata/grantfeed/internal/interfaces/http"
	"github.com/openipdata/grantfeed/internal/interfaces/http/handlers"
	"github.com/openipdata/grantfeed/internal/pipeline"
)

// newServeCommand builds "grantfeed serve": run migrations, wire the full
// dependency graph, and serve the HTTP API until interrupted.
func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
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

			dsn := postgres.BuildDSN(cfg.Database)
			if err := postgres.RunMigrations(dsn, cfg.Database.MigrationPath); err != nil {
				return err
			}
			conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			ledger := redis.NewSyncLedger(redisClient, cfg.Redis.KeyPrefix, logger)

			producer := kafka.NewProducer(cfg.Kafka, logger)
			defer producer.Close()

			recordRepo := repositories.NewRecordRepository(conn.Pool(), logger)
			metrics := prometheus.NewMetrics(promclient.DefaultRegisterer)

			service := pipeline.NewService(pipeline.ServiceDeps{
				Discovery: pipeline.NewDiscovery(cfg.Source, logger),
				Ledger:    ledger,
				Publisher: producer,
				Metrics:   metrics,
				Logger:    logger,
			})

			router := httpiface.NewRouter(httpiface.RouterConfig{
				Mode: cfg.Server.Mode,
				HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
					"postgres": conn,
					"redis":    redisClient,
				}, logger),
				RecordHandler: handlers.NewRecordHandler(recordRepo, logger),
				SyncHandler:   handlers.NewSyncHandler(service, ledger, recordRepo, logger),
				Logger:        logger,
			})
			server := httpiface.NewServer(cfg.Server, router, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.Info("shutdown signal received", logging.String("signal", sig.String()))
				return server.Shutdown(context.Background())
			}
		},
	}
}
