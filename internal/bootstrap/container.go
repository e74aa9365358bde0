package bootstrap

import (
	"context"
	"log"

	"project-memory-be/internal/config"
	"project-memory-be/internal/controller"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/internal/repository/memory"
	"project-memory-be/internal/repository/redisstore"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/internal/service"
	"project-memory-be/pkg/embedding"
	"project-memory-be/pkg/events"
	"project-memory-be/pkg/gateway"
	"project-memory-be/pkg/llm"
	"project-memory-be/pkg/llm/factory"
	"project-memory-be/pkg/metrics"
	"project-memory-be/pkg/trigger"
	"project-memory-be/pkg/usage"

	pktNats "project-memory-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const statusListenerDurable = "memory-auto-trigger"

type Container struct {
	// Controllers
	MemoryController controller.IMemoryController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	PipelineService service.IPipelineService

	UowFactory unitofwork.RepositoryFactory
	Metrics    *metrics.Metrics
	Logger     logger.ILogger

	natsSub  *pktNats.Subscriber
	listener *service.StatusEventListener
	closers  []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := logger.NewIsolatedLogger(cfg.App.PipelineLogPath)

	var m *metrics.Metrics
	if cfg.App.MetricsEnabled {
		m = metrics.New()
	}

	// 2. Job Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)

	// 3. Model Gateway
	gw := gateway.New(
		gateway.Config{
			LLMModel:          cfg.Ai.LLMModel,
			EmbeddingModel:    cfg.Ai.EmbeddingModel,
			DefaultAPIKey:     cfg.Ai.DefaultAPIKey,
			KeyOptional:       !factory.RequiresAPIKey(cfg.Ai.LLMProvider) && !embedding.RequiresAPIKey(cfg.Ai.EmbeddingProvider),
			MaxInputChars:     cfg.Pipeline.MaxInputChars,
			CallTimeout:       cfg.Ai.CallTimeout,
			RequestsPerSecond: cfg.Ai.RequestsPerSecond,
			Burst:             cfg.Ai.Burst,
		},
		func(apiKey string) (llm.LLMProvider, error) {
			return factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, apiKey)
		},
		func(apiKey string) (embedding.EmbeddingProvider, error) {
			return embedding.NewProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingBaseURL, apiKey)
		},
		usage.NewRecorder(uowFactory, pipelineLogger),
		m,
		pipelineLogger,
	)
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	checks := map[string]controller.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	c := &Container{UowFactory: uowFactory, Metrics: m, Logger: sysLogger}

	// 4. In-flight guard: Redis when reachable, otherwise process-local.
	var guard trigger.InFlightGuard = memory.NewInFlightGuard(cfg.Pipeline.GuardTTL)
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory guard", err)
			_ = rdb.Close()
		} else {
			guard = redisstore.NewInFlightGuard(rdb, cfg.Pipeline.GuardTTL)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// 5. Pipeline Services
	publisherService := service.NewPublisherService(cfg.Pipeline.TopicName, pubSub)
	autoTrigger := trigger.NewController(guard, publisherService, m, pipelineLogger)
	c.listener = service.NewStatusEventListener(autoTrigger, pipelineLogger)

	// Status events travel over NATS when configured; otherwise they are
	// handed to the listener in process.
	var sink events.Sink = events.SinkFunc(c.listener.Handle)
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}
		if natsPub != nil && natsSub != nil {
			sink = natsPub
			c.natsSub = natsSub
			checks["nats"] = natsPub.Ping
			c.closers = append(c.closers, natsPub.Close, natsSub.Close)
		} else {
			if natsPub != nil {
				natsPub.Close()
			}
			if natsSub != nil {
				natsSub.Close()
			}
			log.Printf("[WARN] NATS unavailable, dispatching status events in process")
		}
	}
	eventPublisher := events.NewSinkPublisher(sink, sysLogger)

	pipelineService := service.NewPipelineService(uowFactory, gw, eventPublisher, m, pipelineLogger, service.PipelineConfig{
		ChunkSize:    cfg.Pipeline.ChunkSize,
		ChunkOverlap: cfg.Pipeline.ChunkOverlap,
	})
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Pipeline.TopicName,
		pipelineService,
		publisherService,
		guard,
		pipelineLogger,
		cfg.Pipeline.Workers,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	memoryService := service.NewMemoryService(uowFactory, pipelineService, publisherService, sysLogger)
	suggestionService := service.NewSuggestionService(uowFactory, gw, cfg.Ai.EmbeddingModel)
	contextSearchService := service.NewContextSearchService(uowFactory, gw, cfg.Pipeline.MinSimilarity)
	documentService := service.NewDocumentService(uowFactory, eventPublisher, sysLogger)

	// 6. Controllers
	c.MemoryController = controller.NewMemoryController(memoryService, suggestionService, contextSearchService, documentService)
	c.HealthController = controller.NewHealthController(checks)
	c.ConsumerService = consumerService
	c.PipelineService = pipelineService
	return c
}

// StartBackground starts the job consumer and, with NATS configured, the
// status event subscription.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.natsSub != nil {
		return c.natsSub.Subscribe(ctx, events.TypeDocumentStatusChanged, statusListenerDurable, c.listener.Handle)
	}
	return nil
}

// Close waits for running stages and releases the broker connections.
func (c *Container) Close() {
	c.ConsumerService.Wait()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if zl, ok := c.Logger.(*logger.ZapLogger); ok {
		_ = zl.Sync()
	}
}
