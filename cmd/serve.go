package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/RishiKendai/duplink/internal/api"
	"github.com/RishiKendai/duplink/internal/config"
	"github.com/RishiKendai/duplink/internal/configs/env"
	"github.com/RishiKendai/duplink/internal/detection"
	"github.com/RishiKendai/duplink/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/duplink/internal/infra/redis"
	"github.com/RishiKendai/duplink/internal/ingest"
	"github.com/RishiKendai/duplink/internal/logger"
	"github.com/RishiKendai/duplink/internal/metrics"
	"github.com/RishiKendai/duplink/internal/repository"
	"github.com/RishiKendai/duplink/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingestion and detection service",
	Long: `Start the HTTP API, the Redis stream consumer that stores submitted
documents in MongoDB, and the worker pool that runs detection jobs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		return serve(cmd.Context(), path)
	},
}

func loadServeConfig(path string) (*config.Config, error) {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := loadServeConfig(configPath)
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting duplink server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.MetricsHandler())
	metricsServer := api.StartServer("metrics", metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	defer mongoClient.Close(context.Background())

	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		return fmt.Errorf("failed to create Redis client: %w", err)
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	reportsRepo := repository.NewReportsRepository(mongoRepo)
	if err := documentsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure document indexes")
	}
	if err := reportsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure report indexes")
	}

	ingestSvc := ingest.NewService(documentsRepo)
	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		ingestSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	workerPool := detection.NewWorkerPool(ctx)
	defer workerPool.Close()

	detector := detection.NewService(documentsRepo, reportsRepo, redisClient.Client, cfg.Detection)
	handler := api.NewHandler(cfg, documentsRepo, reportsRepo, detector, workerPool, redisClient.Client, ingestSvc)
	router := api.SetupRoutes(cfg, handler)

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	srv := api.StartServer("api", router, cfg.ServerPort)

	<-ctx.Done()
	log.Info().Msg("Shutting down gracefully")
	cancel()

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}
	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
	return nil
}

func init() {
	serveCmd.Flags().String("config", "", "YAML config file overlaying the environment")
	rootCmd.AddCommand(serveCmd)
}
