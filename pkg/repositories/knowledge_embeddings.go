package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

// KnowledgeEmbeddingRepository stores and searches embedded knowledge-base
// passages for out-of-scope answering.
type KnowledgeEmbeddingRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeEmbeddingRepository(pool *pgxpool.Pool) *KnowledgeEmbeddingRepository {
	return &KnowledgeEmbeddingRepository{pool: pool}
}

func (r *KnowledgeEmbeddingRepository) Insert(ctx context.Context, passage models.KnowledgePassage, embedding []float32) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO knowledge_embeddings (content, source, embedding)
		VALUES ($1, $2, $3)`,
		passage.Content, passage.Source, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("insert knowledge embedding: %w", err)
	}
	return nil
}

// SearchSimilar returns the topK passages closest to the query embedding by
// cosine distance.
func (r *KnowledgeEmbeddingRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.KnowledgePassage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT content, source
		FROM knowledge_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search knowledge embeddings: %w", err)
	}
	defer rows.Close()

	var passages []models.KnowledgePassage
	for rows.Next() {
		var p models.KnowledgePassage
		if err := rows.Scan(&p.Content, &p.Source); err != nil {
			return nil, fmt.Errorf("scan knowledge passage: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}
