// Package llm provides embedding-provider clients using CloudWeGo Eino.
package llm

import (
	"context"
	"fmt"
	"os"

	geminiEmbed "github.com/cloudwego/eino-ext/components/embedding/gemini"
	ollamaEmbed "github.com/cloudwego/eino-ext/components/embedding/ollama"
	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// Supported embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

const (
	// DefaultOllamaURL is the default base URL for a local Ollama server.
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultOpenAIEmbeddingModel is used when no model is configured.
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	// DefaultOllamaEmbeddingModel is used when no model is configured.
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
	// DefaultGeminiEmbeddingModel is used when no model is configured.
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

// Config holds configuration for creating an embedding client.
type Config struct {
	Provider       string
	EmbeddingModel string
	APIKey         string // Required for OpenAI and Gemini
	BaseURL        string // Used by Ollama (default: http://localhost:11434)
}

// Enabled reports whether the configuration is complete enough to reach an
// embedding provider. Semantic indexing degrades to a no-op when false.
func (c Config) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
		return c.APIKey != ""
	case ProviderOllama:
		return true
	default:
		return false
	}
}

// NewEmbedder creates an Eino embedding client for the configured provider.
func NewEmbedder(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		modelName := cfg.EmbeddingModel
		if modelName == "" {
			modelName = DefaultOpenAIEmbeddingModel
		}
		return openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
			Model:  modelName,
			APIKey: cfg.APIKey,
		})

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		modelName := cfg.EmbeddingModel
		if modelName == "" {
			modelName = DefaultOllamaEmbeddingModel
		}
		return ollamaEmbed.NewEmbedder(ctx, &ollamaEmbed.EmbeddingConfig{
			BaseURL: baseURL,
			Model:   modelName,
		})

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		// The gemini embedding client reads credentials from the environment.
		_ = os.Setenv("GOOGLE_API_KEY", cfg.APIKey)
		_ = os.Setenv("GEMINI_API_KEY", cfg.APIKey)

		modelName := cfg.EmbeddingModel
		if modelName == "" {
			modelName = DefaultGeminiEmbeddingModel
		}
		return geminiEmbed.NewEmbedder(ctx, &geminiEmbed.EmbeddingConfig{
			Model: modelName,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: openai, ollama, gemini)", cfg.Provider)
	}
}
