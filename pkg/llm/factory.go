package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// ProviderConfig selects and configures a chat backend.
type ProviderConfig struct {
	Provider string // "openai" or "anthropic"
	Endpoint string
	Model    string
	APIKey   string
}

// NewChatClient creates a chat client for the configured provider.
// "openai" covers any OpenAI-compatible endpoint (vLLM, Ollama, etc.).
func NewChatClient(cfg *ProviderConfig, logger *zap.Logger) (ChatClient, error) {
	base := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	}
	switch cfg.Provider {
	case "openai":
		return NewClient(base, logger)
	case "anthropic":
		return NewAnthropicClient(base, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
