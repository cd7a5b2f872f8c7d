// Package repositories provides data access over the engine's own Postgres
// database: chat audit records and the embedding tables used for retrieval.
package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/datachat-io/datachat-engine/pkg/models"
)

// SchemaEmbeddingRepository stores and searches embedded schema fragments.
type SchemaEmbeddingRepository struct {
	pool *pgxpool.Pool
}

func NewSchemaEmbeddingRepository(pool *pgxpool.Pool) *SchemaEmbeddingRepository {
	return &SchemaEmbeddingRepository{pool: pool}
}

// Upsert writes a fragment and its embedding, replacing any previous entry
// for the same table.
func (r *SchemaEmbeddingRepository) Upsert(ctx context.Context, fragment models.SchemaFragment, embedding []float32) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schema_embeddings (namespace, table_name, group_id, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, table_name)
		DO UPDATE SET group_id = EXCLUDED.group_id,
		              content = EXCLUDED.content,
		              embedding = EXCLUDED.embedding,
		              updated_at = now()`,
		fragment.Namespace, fragment.Table, fragment.GroupID, fragment.Content,
		pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("upsert schema embedding: %w", err)
	}
	return nil
}

// SearchSimilar returns the topK fragments closest to the query embedding by
// cosine distance.
func (r *SchemaEmbeddingRepository) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]models.SchemaFragment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT namespace, table_name, group_id, content
		FROM schema_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search schema embeddings: %w", err)
	}
	defer rows.Close()

	var fragments []models.SchemaFragment
	for rows.Next() {
		var f models.SchemaFragment
		if err := rows.Scan(&f.Namespace, &f.Table, &f.GroupID, &f.Content); err != nil {
			return nil, fmt.Errorf("scan schema fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}
