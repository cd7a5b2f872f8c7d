package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

// SchemaWriter persists embedded schema fragments.
type SchemaWriter interface {
	Upsert(ctx context.Context, fragment models.SchemaFragment, embedding []float32) error
}

// KnowledgeWriter persists embedded knowledge passages.
type KnowledgeWriter interface {
	Insert(ctx context.Context, passage models.KnowledgePassage, embedding []float32) error
}

// IngestService embeds schema fragments and knowledge passages and writes
// them to the retrieval tables. Ingestion runs offline, before the engine
// answers questions against the loaded content.
type IngestService struct {
	embedder  llm.EmbeddingClient
	schema    SchemaWriter
	knowledge KnowledgeWriter
	model     string
	logger    *zap.Logger
}

func NewIngestService(embedder llm.EmbeddingClient, schema SchemaWriter, knowledge KnowledgeWriter, model string, logger *zap.Logger) *IngestService {
	return &IngestService{
		embedder:  embedder,
		schema:    schema,
		knowledge: knowledge,
		model:     model,
		logger:    logger.Named("ingest"),
	}
}

// LoadSchemaFragments embeds and upserts the given fragments, returning how
// many were written. A fragment with no content is embedded from its table
// reference so it can still be retrieved by name.
func (s *IngestService) LoadSchemaFragments(ctx context.Context, fragments []models.SchemaFragment) (int, error) {
	written := 0
	for _, fragment := range fragments {
		if fragment.Table == "" {
			return written, fmt.Errorf("schema fragment %d: table name is required", written)
		}
		if fragment.Namespace == "" {
			fragment.Namespace = "public"
		}

		input := fragment.Content
		if input == "" {
			input = fragment.Namespace + "." + fragment.Table
		}

		embedding, err := s.embedder.CreateEmbedding(ctx, input, s.model)
		if err != nil {
			return written, fmt.Errorf("embed schema fragment %s.%s: %w", fragment.Namespace, fragment.Table, err)
		}
		if err := s.schema.Upsert(ctx, fragment, embedding); err != nil {
			return written, err
		}
		written++
	}

	s.logger.Info("loaded schema fragments", zap.Int("count", written))
	return written, nil
}

// LoadKnowledgePassages embeds and inserts the given passages, returning how
// many were written.
func (s *IngestService) LoadKnowledgePassages(ctx context.Context, passages []models.KnowledgePassage) (int, error) {
	written := 0
	for i, passage := range passages {
		if passage.Content == "" {
			return written, fmt.Errorf("knowledge passage %d: content is required", i)
		}

		embedding, err := s.embedder.CreateEmbedding(ctx, passage.Content, s.model)
		if err != nil {
			return written, fmt.Errorf("embed knowledge passage %d: %w", i, err)
		}
		if err := s.knowledge.Insert(ctx, passage, embedding); err != nil {
			return written, err
		}
		written++
	}

	s.logger.Info("loaded knowledge passages", zap.Int("count", written))
	return written, nil
}
