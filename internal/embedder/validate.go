package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// chatModelFragments identify chat/completion models that cannot embed.
// A match in EMBEDDING_MODEL earns a startup warning.
var chatModelFragments = []string{
	"gpt-4", "gpt-3.5", "gpt-35", "o1", "o3",
	"llama3", "llama2", "llama-3", "llama-2",
	"mistral", "mixtral", "gemma", "phi-", "phi3",
	"claude", "command-r", "deepseek", "qwen",
	"solar", "vicuna", "falcon", "yi-",
}

func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, frag := range chatModelFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// Validate runs pre-flight checks on the embedding configuration so broken
// setups fail at startup, not on the first upload. Hard failures (API
// backend without credentials) return an error; suspicious but workable
// setups only warn.
func Validate(log *slog.Logger) error {
	backend := os.Getenv("EMBEDDING_PROVIDER")
	if backend == "" {
		backend = getEnvOrDefault("MODEL_PROVIDER", "ollama")
		if backend != "ollama" {
			log.Warn("embedder: EMBEDDING_PROVIDER is not set, inheriting MODEL_PROVIDER as embedding backend",
				slog.String("backend", backend),
				slog.String("hint", "set EMBEDDING_PROVIDER=ollama (or openai/azure) to be explicit"),
			)
		}
	}

	switch backend {
	case "openai":
		if firstEnv("EMBEDDING_API_KEY", "OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: openai backend selected but no API key found, set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
	case "azure":
		if firstEnv("EMBEDDING_API_KEY", "AZURE_OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: azure backend selected but no API key found, set AZURE_OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		if firstEnv("EMBEDDING_ENDPOINT", "AZURE_OPENAI_ENDPOINT") == "" {
			return fmt.Errorf("embedder: azure backend selected but no endpoint found, set AZURE_OPENAI_ENDPOINT or EMBEDDING_ENDPOINT")
		}
	case "bedrock", "gemini":
		return fmt.Errorf("embedder: %s embedding is not yet implemented, set EMBEDDING_PROVIDER to ollama, openai, or azure", backend)
	}

	if model := os.Getenv("EMBEDDING_MODEL"); model != "" && looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, embeddings will likely be poor or broken",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. nomic-embed-text, text-embedding-3-small"),
		)
	}

	return nil
}
