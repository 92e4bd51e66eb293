package bootstrap

import (
	"context"
	"fmt"
	"time"

	"docqa-be/internal/config"
	"docqa-be/internal/controller"
	"docqa-be/internal/metrics"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/memory"
	"docqa-be/internal/repository/postgres"
	redisrepo "docqa-be/internal/repository/redis"
	"docqa-be/internal/service"
	"docqa-be/internal/websocket"
	"docqa-be/pkg/database"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/llm/factory"
	"docqa-be/pkg/llm/retry"
	pktNats "docqa-be/pkg/nats"
	"docqa-be/pkg/rag/executor"
	"docqa-be/pkg/rag/history"
	"docqa-be/pkg/rag/policy"
	"docqa-be/pkg/rag/response"
	"docqa-be/pkg/rag/search"
	"docqa-be/pkg/rag/session"
	"docqa-be/pkg/store"
	"docqa-be/pkg/vectorstore"
	vsmemory "docqa-be/pkg/vectorstore/memory"
	"docqa-be/pkg/vectorstore/qdrant"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const queryEmbeddingTTL = 15 * time.Minute

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	WebSocketHandler   *websocket.Handler

	// Services, exposed for the CLI and main.go
	ChatService      service.IChatService
	IngestionService service.IIngestionService
	ConsumerService  service.IConsumerService

	WebSocketHub *websocket.Hub
	Metrics      *metrics.Metrics
	Logger       logger.ILogger

	closers []func()
}

type Option func(*Container)

// WithLogger replaces the default file and console logger.
func WithLogger(l logger.ILogger) Option {
	return func(c *Container) { c.Logger = l }
}

// NewContainer wires every component from cfg. Postgres and redis are only
// dialled when the configured stores need them.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	c := &Container{Metrics: metrics.New()}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	}

	db, err := c.openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := c.openRedis(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Model providers
	llmProvider, err := factory.NewLLMProvider(factory.Params{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.Ai.LLMAPIKey,
		Timeout:  cfg.Ai.LLMTimeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	llmProvider = retry.Wrap(llmProvider, cfg.Ai.LLMMaxRetries, 0, c.Logger)
	c.Logger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider":    cfg.Ai.LLMProvider,
		"model":       cfg.Ai.LLMModel,
		"max_retries": cfg.Ai.LLMMaxRetries,
	})

	if cfg.Ai.EmbeddingProvider != "ollama" {
		c.Close()
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
	embeddingProvider := embedding.NewCachedProvider(
		embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel),
		queryEmbeddingTTL,
	)

	// Stores
	vectorStore, err := newVectorStore(cfg, db)
	if err != nil {
		c.Close()
		return nil, err
	}
	historyStore, err := newHistoryStore(cfg, db, rdb)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Logger.Info("Bootstrap", "Stores ready", map[string]interface{}{
		"vector_store":  cfg.VectorStore.Driver,
		"history_store": cfg.History.Store,
	})

	// Event bus
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			c.Logger.Warn("Bootstrap", "NATS unavailable, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// Pipeline
	pipeline := executor.NewPipelineExecutor(executor.Dependencies{
		Sessions:   session.NewManager(historyStore),
		Policy:     policy.New(llmProvider, cfg.Rag.StrictVerdict, c.Logger),
		Retriever:  search.NewRetriever(embeddingProvider, vectorStore, cfg.Rag.TopK, c.Logger),
		Summarizer: history.NewSummarizer(llmProvider, c.Logger),
		Generator:  response.NewGenerator(llmProvider, c.Logger),
		Metrics:    c.Metrics,
		Events:     eventPublisher,
		Logger:     c.Logger,
	})

	// Services
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	c.IngestionService = service.NewIngestionService(
		embeddingProvider,
		vectorStore,
		publisherService,
		eventPublisher,
		c.Metrics,
		service.IngestionOptions{
			ChunkSize:    cfg.Rag.ChunkSize,
			ChunkOverlap: cfg.Rag.ChunkOverlap,
			Concurrency:  cfg.Rag.IngestConcurrency,
			StagingDir:   cfg.App.UploadDir,
			Dimension:    cfg.VectorStore.Dimension,
		},
		c.Logger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.IngestTopic, c.IngestionService, c.Logger)
	c.ChatService = service.NewChatService(pipeline)

	// Surfaces
	c.WebSocketHub = websocket.NewHub(rdb, c.Logger)
	c.WebSocketHandler = websocket.NewHandler(c.WebSocketHub, c.ChatService)
	c.ChatController = controller.NewChatController(c.ChatService)
	c.DocumentController = controller.NewDocumentController(c.IngestionService)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	_ = c.Logger.Sync()
}

func (c *Container) openDatabase(cfg *config.Config) (*gorm.DB, error) {
	needed := cfg.VectorStore.Driver == "pgvector" || cfg.History.Store == "postgres"
	if !needed {
		return nil, nil
	}
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is required for vector store %q / history store %q",
			cfg.VectorStore.Driver, cfg.History.Store)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "development")
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.closers = append(c.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db, nil
}

func (c *Container) openRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.App.RedisURL == "" {
		if cfg.History.Store == "redis" {
			return nil, fmt.Errorf("REDIS_URL is required for history store redis")
		}
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn("Bootstrap", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		if cfg.History.Store == "redis" {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Warn("Bootstrap", "Redis unreachable, socket fanout stays local", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	return rdb, nil
}

func newVectorStore(cfg *config.Config, db *gorm.DB) (vectorstore.Store, error) {
	switch cfg.VectorStore.Driver {
	case "qdrant", "":
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.QdrantURL,
			APIKey:     cfg.VectorStore.QdrantKey,
			Collection: cfg.VectorStore.Collection,
		}), nil
	case "pgvector":
		return postgres.NewVectorStore(db), nil
	case "memory":
		return vsmemory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.VectorStore.Driver)
	}
}

func newHistoryStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (store.HistoryStore, error) {
	switch cfg.History.Store {
	case "memory", "":
		return memory.NewSessionRepository(cfg.History.TTL), nil
	case "redis":
		return redisrepo.NewHistoryRepository(rdb, cfg.History.TTL), nil
	case "postgres":
		return postgres.NewHistoryStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported history store: %s", cfg.History.Store)
	}
}
