package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/database/postgres"
	"github.com/openipdata/grantfeed/internal/infrastructure/database/postgres/repositories"
	"github.com/openipdata/grantfeed/internal/infrastructure/database/redis"
	"github.com/openipdata/grantfeed/internal/infrastructure/messaging/kafka"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/prometheus"
	"github.com/openipdata/grantfeed/internal/infrastructure/storage/minio"
	"github.com/openipdata/grantfeed/internal/pipeline"
)

// newWorkerCommand builds "grantfeed worker": consume archive tasks and run
// each through the full ingestion pipeline until interrupted.
func newWorkerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the archive ingestion worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunWorker(ctx, cfg, logger.Named("worker"))
		},
	}
}

// RunWorker wires the worker dependency graph and consumes archive tasks
// until ctx is cancelled.  It is shared by "grantfeed worker" and the
// standalone cmd/worker binary.
func RunWorker(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
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

	minioClient, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return err
	}
	archiveStore := minio.NewArchiveStore(minioClient, logger)

	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()

	metrics := prometheus.NewMetrics(promclient.DefaultRegisterer)

	service := pipeline.NewService(pipeline.ServiceDeps{
		Fetcher:   pipeline.NewFetcher(cfg.Source, logger),
		Ledger:    ledger,
		Records:   repositories.NewRecordRepository(conn.Pool(), logger),
		Archives:  archiveStore,
		Publisher: producer,
		Metrics:   metrics,
		Logger:    logger,
	})

	// ── health and metrics endpoint ───────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/metrics", promhttp.Handler())
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		Handler: mux,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", logging.Err(err))
		}
	}()
	defer healthServer.Shutdown(context.Background()) //nolint:errcheck

	// ── consume ───────────────────────────────────────────────────────────────
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Worker, producer, logger)
	defer consumer.Close()

	logger.Info("worker started",
		logging.String("group", cfg.Kafka.GroupID),
		logging.Int("health_port", cfg.Worker.HealthPort),
	)

	handler := func(ctx context.Context, task kafka.ArchiveTask) error {
		taskCtx, cancel := context.WithTimeout(ctx, cfg.Worker.HandlerTimeout)
		defer cancel()
		return service.ProcessArchive(taskCtx, task)
	}
	if err := consumer.Run(ctx, handler); err != nil {
		return err
	}

	logger.Info("worker stopped")
	return nil
}
