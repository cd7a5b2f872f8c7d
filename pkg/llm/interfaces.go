// Package llm provides language model clients for chat and embeddings.
package llm

import "context"

// ChatClient is the language-model call contract used by the pipeline.
// Structured output is layered on top via ParseJSONResponse.
// Use this interface for dependency injection to enable mocking in tests.
type ChatClient interface {
	// GenerateResponse generates a chat completion for the given prompt.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// EmbeddingClient generates embedding vectors for retrieval.
type EmbeddingClient interface {
	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error)
}

// Compile-time interface checks.
var (
	_ ChatClient      = (*Client)(nil)
	_ EmbeddingClient = (*Client)(nil)
	_ ChatClient      = (*AnthropicClient)(nil)
)
