package main

import (
	"context"
	"log"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/config"
	"github.com/datachat-io/datachat-engine/pkg/database"
	"github.com/datachat-io/datachat-engine/pkg/datasource"
	"github.com/datachat-io/datachat-engine/pkg/handlers"
	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/logging"
	"github.com/datachat-io/datachat-engine/pkg/pipeline"
	"github.com/datachat-io/datachat-engine/pkg/repositories"
	"github.com/datachat-io/datachat-engine/pkg/retrieval"
	"github.com/datachat-io/datachat-engine/pkg/schema"
	"github.com/datachat-io/datachat-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("aiProvider", cfg.AI.Provider),
		zap.String("aiModel", cfg.AI.Model),
		zap.Bool("datasourceConfigured", cfg.Datasource.IsConfigured()))

	ctx := context.Background()

	if err := database.RunMigrations(cfg.Database.URL(), cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	engineDB, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to engine database", zap.Error(err))
	}
	defer engineDB.Close()

	chatClient, err := llm.NewChatClient(&llm.ProviderConfig{
		Provider: cfg.AI.Provider,
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create chat client", zap.Error(err))
	}

	embeddingClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.EmbeddingEndpoint,
		Model:    cfg.AI.EmbeddingModel,
		APIKey:   cfg.AI.EmbeddingAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	schemaRepo := repositories.NewSchemaEmbeddingRepository(engineDB.Pool)
	knowledgeRepo := repositories.NewKnowledgeEmbeddingRepository(engineDB.Pool)
	sessionRepo := repositories.NewSessionRepository(engineDB.Pool)

	schemaRetriever := retrieval.NewVectorSchemaRetriever(embeddingClient, schemaRepo, cfg.AI.EmbeddingModel, logger)
	knowledgeRetriever := retrieval.NewVectorKnowledgeRetriever(embeddingClient, knowledgeRepo, cfg.AI.EmbeddingModel, logger)

	// The target datasource is optional. Without one the pipeline still
	// answers out-of-scope questions and reports a fixed error for SQL runs.
	var executor datasource.QueryExecutor
	var resolver *schema.ContextResolver
	if cfg.Datasource.IsConfigured() {
		pgExecutor, err := datasource.NewPostgresExecutor(ctx, cfg.Datasource.URL, cfg.Datasource.MaxConns)
		if err != nil {
			logger.Fatal("Failed to connect to datasource",
				zap.String("url", logging.SanitizeConnectionString(cfg.Datasource.URL)),
				zap.Error(err))
		}
		defer func() { _ = pgExecutor.Close() }()
		executor = pgExecutor
		resolver = schema.NewContextResolver(schema.NewPostgresStore(pgExecutor.Pool()), logger)
	} else {
		logger.Warn("No datasource configured; SQL execution is disabled")
	}

	engine := pipeline.New(pipeline.Deps{
		Chat:               chatClient,
		SchemaRetriever:    schemaRetriever,
		KnowledgeRetriever: knowledgeRetriever,
		Resolver:           resolver,
		Executor:           executor,
		Logger:             logger,
		SchemaTopK:         cfg.Retrieval.SchemaTopK,
		KnowledgeTopK:      cfg.Retrieval.KnowledgeTopK,
		QueryLimit:         cfg.Datasource.DefaultLimit,
	})

	sessions := services.NewSessionService(sessionRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(engine, sessions, logger).RegisterRoutes(mux)
	handlers.NewSessionsHandler(sessions, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting datachat-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
