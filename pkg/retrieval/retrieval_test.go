package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat-engine/pkg/llm"
	"github.com/datachat-io/datachat-engine/pkg/models"
)

type fakeSchemaSearcher struct {
	fragments []models.SchemaFragment
	err       error
	gotTopK   int
}

func (f *fakeSchemaSearcher) SearchSimilar(_ context.Context, _ []float32, topK int) ([]models.SchemaFragment, error) {
	f.gotTopK = topK
	return f.fragments, f.err
}

type fakeKnowledgeSearcher struct {
	passages []models.KnowledgePassage
	err      error
}

func (f *fakeKnowledgeSearcher) SearchSimilar(context.Context, []float32, int) ([]models.KnowledgePassage, error) {
	return f.passages, f.err
}

func TestVectorSchemaRetriever(t *testing.T) {
	searcher := &fakeSchemaSearcher{fragments: []models.SchemaFragment{
		{Namespace: "public", Table: "students"},
	}}
	retriever := NewVectorSchemaRetriever(&llm.MockEmbeddingClient{}, searcher, "test-embed", zap.NewNop())

	fragments, err := retriever.RetrieveSchema(context.Background(), "how many students?", 5)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "students", fragments[0].Table)
	assert.Equal(t, 5, searcher.gotTopK)
}

func TestVectorSchemaRetrieverEmbeddingFailure(t *testing.T) {
	embedder := &llm.MockEmbeddingClient{
		CreateEmbeddingFunc: func(context.Context, string, string) ([]float32, error) {
			return nil, errors.New("embedding service down")
		},
	}
	retriever := NewVectorSchemaRetriever(embedder, &fakeSchemaSearcher{}, "test-embed", zap.NewNop())

	_, err := retriever.RetrieveSchema(context.Background(), "question", 5)
	assert.ErrorContains(t, err, "embed question")
}

func TestVectorKnowledgeRetriever(t *testing.T) {
	searcher := &fakeKnowledgeSearcher{passages: []models.KnowledgePassage{
		{Content: "Refunds take 14 days.", Source: "policy.md"},
	}}
	retriever := NewVectorKnowledgeRetriever(&llm.MockEmbeddingClient{}, searcher, "test-embed", zap.NewNop())

	passages, err := retriever.RetrieveKnowledge(context.Background(), "refund policy", 4)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "policy.md", passages[0].Source)
}

func TestVectorKnowledgeRetrieverSearchFailure(t *testing.T) {
	searcher := &fakeKnowledgeSearcher{err: errors.New("relation does not exist")}
	retriever := NewVectorKnowledgeRetriever(&llm.MockEmbeddingClient{}, searcher, "test-embed", zap.NewNop())

	_, err := retriever.RetrieveKnowledge(context.Background(), "question", 4)
	assert.ErrorContains(t, err, "search knowledge passages")
}
