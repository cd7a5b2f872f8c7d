// load-embeddings populates the retrieval tables from JSON files.
//
// The schema file holds an array of schema fragments:
//
//	[{"namespace": "public", "table": "students", "content": "students: id, name, course"}]
//
// The knowledge file holds an array of passages:
//
//	[{"content": "Refunds are processed within 14 days.", "source": "policy.md"}]
//
// Usage: go run ./scripts/load-embeddings [-schema schema.json] [-knowledge kb.json]
//
// Configuration comes from config.yaml / environment, same as the engine
// itself (PG* for the engine database, AI_EMBEDDING_* for the embedder).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/config"
	"github.com/datachat-io/datachat-engine/pkg/database"
	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/logging"
	"github.com/datachat-io/datachat-engine/pkg/models"
	"github.com/datachat-io/datachat-engine/pkg/repositories"
	"github.com/datachat-io/datachat-engine/pkg/services"
)

func main() {
	schemaPath := flag.String("schema", "", "JSON file of schema fragments to load")
	knowledgePath := flag.String("knowledge", "", "JSON file of knowledge passages to load")
	flag.Parse()

	if *schemaPath == "" && *knowledgePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [-schema schema.json] [-knowledge kb.json]\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	engineDB, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to engine database", zap.Error(err))
	}
	defer engineDB.Close()

	embedder, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.EmbeddingEndpoint,
		Model:    cfg.AI.EmbeddingModel,
		APIKey:   cfg.AI.EmbeddingAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	ingest := services.NewIngestService(
		embedder,
		repositories.NewSchemaEmbeddingRepository(engineDB.Pool),
		repositories.NewKnowledgeEmbeddingRepository(engineDB.Pool),
		cfg.AI.EmbeddingModel,
		logger,
	)

	if *schemaPath != "" {
		var fragments []models.SchemaFragment
		if err := readJSONFile(*schemaPath, &fragments); err != nil {
			logger.Fatal("Failed to read schema file", zap.String("path", *schemaPath), zap.Error(err))
		}
		count, err := ingest.LoadSchemaFragments(ctx, fragments)
		if err != nil {
			logger.Fatal("Failed to load schema fragments",
				zap.Int("written", count), zap.Error(err))
		}
		fmt.Printf("Loaded %d schema fragments from %s\n", count, *schemaPath)
	}

	if *knowledgePath != "" {
		var passages []models.KnowledgePassage
		if err := readJSONFile(*knowledgePath, &passages); err != nil {
			logger.Fatal("Failed to read knowledge file", zap.String("path", *knowledgePath), zap.Error(err))
		}
		count, err := ingest.LoadKnowledgePassages(ctx, passages)
		if err != nil {
			logger.Fatal("Failed to load knowledge passages",
				zap.Int("written", count), zap.Error(err))
		}
		fmt.Printf("Loaded %d knowledge passages from %s\n", count, *knowledgePath)
	}
}

func readJSONFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
