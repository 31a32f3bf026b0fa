package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docuseek/docqa-go/internal/rag"
)

// Per-backend defaults. EMBEDDING_MODEL and EMBEDDING_DIMENSIONS override
// all of these.
const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"

	// nomic-embed-text emits 768-dimensional vectors; the OpenAI small
	// model emits 1536. Other models need EMBEDDING_DIMENSIONS set.
	defaultOllamaDimensions = 768
	defaultOpenAIDimensions = 1536
)

// DefaultDimensions reports the embedding vector size for a backend, for
// callers that size a vector store up front (Qdrant collection creation).
// EMBEDDING_DIMENSIONS wins when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	if backend == "ollama" {
		return defaultOllamaDimensions
	}
	return defaultOpenAIDimensions
}

// NewFromEnv builds a rag.Embedder from the environment. The embedding
// backend inherits from the chat model configuration unless overridden:
//
//  1. EMBEDDING_PROVIDER, falling back to MODEL_PROVIDER, then "ollama"
//  2. credentials and endpoints inherited from the chat provider's env vars
//  3. EMBEDDING_MODEL / EMBEDDING_API_KEY / EMBEDDING_ENDPOINT /
//     EMBEDDING_DIMENSIONS override the inherited values
func NewFromEnv() (rag.Embedder, error) {
	backend := os.Getenv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = getEnvOrDefault("MODEL_PROVIDER", "ollama")
	}

	switch backend {
	case "ollama":
		return newOllamaFromEnv(), nil
	case "openai":
		return newOpenAIFromEnv()
	case "azure":
		return newAzureFromEnv()
	case "bedrock", "gemini":
		return nil, fmt.Errorf("embedder: %s embedding support is not yet implemented", backend)
	default:
		return nil, fmt.Errorf("embedder: unknown backend %q (valid: ollama, openai, azure)", backend)
	}
}

func newOllamaFromEnv() *OllamaEmbedder {
	host := os.Getenv("EMBEDDING_ENDPOINT")
	if host == "" {
		host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
	}
	return NewOllamaEmbedder(&OllamaConfig{
		Host:  host,
		Model: getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
	})
}

func newOpenAIFromEnv() (*OpenAIEmbedder, error) {
	apiKey := firstEnv("EMBEDDING_API_KEY", "OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
	}
	baseURL := os.Getenv("EMBEDDING_ENDPOINT")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
		Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions),
	}), nil
}

func newAzureFromEnv() (*OpenAIEmbedder, error) {
	apiKey := firstEnv("EMBEDDING_API_KEY", "AZURE_OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
	}
	endpoint := firstEnv("EMBEDDING_ENDPOINT", "AZURE_OPENAI_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("embedder: azure requires AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
	}
	return NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    endpoint + "/openai",
		APIKey:     apiKey,
		Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
		Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions),
		Azure:      true,
		APIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview"),
	}), nil
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
