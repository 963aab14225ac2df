// Package main provides the entry point for the content studio Temporal worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/educoreai-lotus/content-studio/internal/ai"
	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/database"
	"github.com/educoreai-lotus/content-studio/internal/events"
	"github.com/educoreai-lotus/content-studio/internal/generation"
	"github.com/educoreai-lotus/content-studio/internal/metadata"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/persistence"
	"github.com/educoreai-lotus/content-studio/internal/publication"
	"github.com/educoreai-lotus/content-studio/internal/repository"
	"github.com/educoreai-lotus/content-studio/internal/storage"
	"github.com/educoreai-lotus/content-studio/internal/temporal"
	"github.com/educoreai-lotus/content-studio/internal/temporal/activities"
	"github.com/educoreai-lotus/content-studio/internal/temporal/workflows"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("content-studio worker starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Create repositories.
	topicRepo := repository.NewPgTopicRepository(db)
	contentRepo := repository.NewPgContentRepository(db)
	templateRepo := repository.NewPgTemplateRepository(db)
	courseRepo := repository.NewPgCourseRepository(db)

	// Create metrics.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("contentstudio")
	}

	// Create object storage client.
	store, err := storage.NewClient(cfg.Storage, logger, metrics)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		return fmt.Errorf("ensure storage buckets: %w", err)
	}

	// Create AI collaborator clients. The extractor is optional; without it
	// the metadata resolver uses its deterministic fallback.
	generator := ai.NewGenerationClient(cfg.AI.Generation, logger, metrics)
	var extractor ai.MetadataExtractor
	if cfg.AI.Extractor.Enabled {
		extractor = ai.NewExtractorClient(cfg.AI.Extractor, logger, metrics)
		logger.Info().Str("model", cfg.AI.Extractor.Model).Msg("metadata extractor enabled")
	}

	// Build the generation pipeline: metadata resolution, persistence with
	// compensating rollback, and the per-format fan-out coordinator.
	resolver := metadata.NewResolver(topicRepo, nil, extractor, logger)
	gateway := persistence.NewGateway(contentRepo, nil, store, cfg.Generation.MethodID, logger, metrics)
	coordinator := generation.NewCoordinator(generator, gateway, resolver, cfg.Generation.FormatTimeout, logger, metrics)

	// Build the publication pipeline: validator, archive cleanup, downstream
	// transfer and the publisher composing them.
	validator := publication.NewValidator(topicRepo, templateRepo, contentRepo, logger, metrics)
	cleanup := publication.NewArchiveCleanupService(contentRepo, store, logger, metrics)
	transfer := publication.NewHTTPTransfer(cfg.Publish, logger)
	publisher := publication.NewPublisher(courseRepo, topicRepo, contentRepo, validator, transfer, cleanup, logger, metrics)

	// Create the lifecycle event publisher.
	var eventPublisher events.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer func() {
			if closeErr := kafkaPublisher.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close kafka publisher")
			}
		}()
		eventPublisher = kafkaPublisher
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka event publisher created")
	} else {
		eventPublisher = events.NopPublisher{}
		logger.Info().Msg("kafka disabled, lifecycle events will be dropped")
	}

	// Create Temporal client.
	temporalClient, err := temporal.NewClient(cfg.Temporal, logger)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	// Create WorkerManager.
	workerConfig := temporal.DefaultWorkerConfig(cfg.Temporal.TaskQueue)
	manager, err := temporal.NewWorkerManager(temporalClient, workerConfig)
	if err != nil {
		return fmt.Errorf("create worker manager: %w", err)
	}

	// Register workflows.
	manager.RegisterWorkflow(workflows.ContentGenerationWorkflow)
	manager.RegisterWorkflow(workflows.CoursePublishWorkflow)

	// Create and register all activity structs.
	generationActivities := activities.NewGenerationActivities(coordinator)
	publishActivities := activities.NewPublishActivities(validator, publisher)
	eventActivities := activities.NewEventActivities(eventPublisher)

	manager.RegisterActivity(generationActivities)
	manager.RegisterActivity(publishActivities)
	manager.RegisterActivity(eventActivities)

	logger.Info().
		Str("task_queue", cfg.Temporal.TaskQueue).
		Msg("starting temporal worker")

	// Start the worker and block until context is cancelled.
	if err := manager.Start(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("worker stopped via signal")
			return nil
		}
		return fmt.Errorf("worker error: %w", err)
	}

	return nil
}
