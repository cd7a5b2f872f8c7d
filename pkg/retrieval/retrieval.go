// Package retrieval embeds questions and finds the schema fragments and
// knowledge passages most similar to them.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

// SchemaSearcher is the vector-search half of schema retrieval.
type SchemaSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.SchemaFragment, error)
}

// KnowledgeSearcher is the vector-search half of knowledge retrieval.
type KnowledgeSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.KnowledgePassage, error)
}

// VectorSchemaRetriever embeds a question and searches the schema embedding
// table for the closest tables.
type VectorSchemaRetriever struct {
	embedder llm.EmbeddingClient
	searcher SchemaSearcher
	model    string
	logger   *zap.Logger
}

func NewVectorSchemaRetriever(embedder llm.EmbeddingClient, searcher SchemaSearcher, model string, logger *zap.Logger) *VectorSchemaRetriever {
	return &VectorSchemaRetriever{
		embedder: embedder,
		searcher: searcher,
		model:    model,
		logger:   logger.Named("retrieval"),
	}
}

func (r *VectorSchemaRetriever) RetrieveSchema(ctx context.Context, question string, topK int) ([]models.SchemaFragment, error) {
	embedding, err := r.embedder.CreateEmbedding(ctx, question, r.model)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	fragments, err := r.searcher.SearchSimilar(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search schema fragments: %w", err)
	}

	r.logger.Debug("retrieved schema fragments", zap.Int("count", len(fragments)))
	return fragments, nil
}

// VectorKnowledgeRetriever embeds a question and searches the knowledge-base
// embedding table for the closest passages.
type VectorKnowledgeRetriever struct {
	embedder llm.EmbeddingClient
	searcher KnowledgeSearcher
	model    string
	logger   *zap.Logger
}

func NewVectorKnowledgeRetriever(embedder llm.EmbeddingClient, searcher KnowledgeSearcher, model string, logger *zap.Logger) *VectorKnowledgeRetriever {
	return &VectorKnowledgeRetriever{
		embedder: embedder,
		searcher: searcher,
		model:    model,
		logger:   logger.Named("retrieval"),
	}
}

func (r *VectorKnowledgeRetriever) RetrieveKnowledge(ctx context.Context, question string, topK int) ([]models.KnowledgePassage, error) {
	embedding, err := r.embedder.CreateEmbedding(ctx, question, r.model)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	passages, err := r.searcher.SearchSimilar(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search knowledge passages: %w", err)
	}

	r.logger.Debug("retrieved knowledge passages", zap.Int("count", len(passages)))
	return passages, nil
}
