package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oppscout/oppscout-backend/internal/config"
	httpdelivery "github.com/oppscout/oppscout-backend/internal/delivery/http"
	"github.com/oppscout/oppscout-backend/internal/delivery/http/handler"
	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/brave"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/database"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/gemini"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/logger"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/perplexity"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/server"
	"github.com/oppscout/oppscout-backend/internal/repository"
	"github.com/oppscout/oppscout-backend/internal/repository/inmem"
	"github.com/oppscout/oppscout-backend/internal/repository/postgres"
	"github.com/oppscout/oppscout-backend/internal/repository/redisvec"
	"github.com/oppscout/oppscout-backend/internal/scheduler"
	"github.com/oppscout/oppscout-backend/internal/usecase/aggregate"
	"github.com/oppscout/oppscout-backend/internal/usecase/finder"
	"github.com/oppscout/oppscout-backend/internal/usecase/memory"
	"github.com/oppscout/oppscout-backend/internal/usecase/rank"
)

// Container holds all application dependencies. Every external provider
// is optional: a missing credential degrades the matching capability
// instead of failing startup.
type Container struct {
	Config    *config.Config
	Log       *zap.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Server    *server.Server
	Finder    *finder.Finder
	Memory    *memory.Memory
	Scheduler *scheduler.Scheduler
	gemini    *gemini.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Gemini covers completion, extraction, and embeddings. Without a
	// key those stages degrade rather than the whole service failing.
	var (
		geminiClient *gemini.Client
		extractor    aggregate.Extractor
		embedder     memory.Embedder
		llm          finder.Completer
	)
	geminiClient, err = gemini.NewClient(ctx, cfg.Gemini)
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		log.Warn("gemini not configured, extraction/embedding/summary disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	default:
		extractor = geminiClient
		embedder = geminiClient
		llm = geminiClient
	}

	braveClient := brave.NewClient(cfg.Brave.APIKey, cfg.Brave.Timeout)
	if !braveClient.Available() {
		log.Warn("brave not configured, searches return no results")
	}

	perplexityClient := perplexity.NewClient(cfg.Research.PerplexityAPIKey, cfg.Research.Model, cfg.Research.Timeout)
	var researcher finder.Researcher
	if perplexityClient.Available() {
		researcher = perplexityClient
	} else {
		log.Warn("perplexity not configured, deep research disabled")
	}

	// Vector collections go to Redis when configured, otherwise to the
	// in-memory store.
	var (
		redisClient *redis.Client
		store       repository.VectorStore
	)
	if cfg.HasRedis() {
		redisClient, err = database.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		store = redisvec.NewStore(redisClient)
	} else {
		log.Warn("redis not configured, memory is process-local")
		store = inmem.NewStore()
	}

	// The Postgres archive is an optional durable mirror of discovered
	// opportunities.
	var (
		db      *sqlx.DB
		archive repository.OpportunityRepository
	)
	if cfg.HasDatabase() {
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		archive = postgres.NewOpportunityRepository(db)
	}

	// Initialize use cases
	aggregator := aggregate.NewAggregator(braveClient, extractor, log)
	scorer := rank.NewScorer(cfg.Scoring)
	mem := memory.NewMemory(store, embedder, archive, cfg.Gemini.EmbeddingDim, log)

	policy := finder.ResearchPolicy{
		MinCandidates: cfg.Research.MinCandidates,
		MinTopScore:   cfg.Research.MinTopScore,
		MaxCandidates: cfg.Research.MaxCandidates,
	}
	find := finder.NewFinder(aggregator, scorer, mem, llm, researcher, policy, log)

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(find)
	memoryHandler := handler.NewMemoryHandler(mem)
	archiveHandler := handler.NewArchiveHandler(archive)

	capabilities := map[string]bool{
		"gemini":     geminiClient != nil,
		"brave":      braveClient.Available(),
		"perplexity": perplexityClient.Available(),
		"redis":      redisClient != nil,
		"postgres":   db != nil,
	}

	// Initialize router
	router := httpdelivery.NewRouter(searchHandler, memoryHandler, archiveHandler, capabilities)
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(find, cfg.Scheduler, domain.DefaultProfile(), log)
	}

	return &Container{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Redis:     redisClient,
		Server:    srv,
		Finder:    find,
		Memory:    mem,
		Scheduler: sched,
		gemini:    geminiClient,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}

	if c.gemini != nil {
		c.gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("error closing redis", zap.Error(err))
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
