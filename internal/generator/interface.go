// Package generator produces natural-language answers from a question and a
// set of retrieved document chunks. It wraps the Eino chat-model abstraction
// so any supported LLM backend (Ollama, OpenAI, Azure OpenAI, Ark, Gemini)
// can serve as the answer generator.
package generator

import (
	"context"

	"github.com/docuseek/docqa-go/internal/rag"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendArk selects an Ark / OpenAI-compatible gateway endpoint.
	BackendArk Backend = "ark"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds all generator-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID to use (e.g. "gpt-4o", "llama3").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama and Azure).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	APIKey string

	// AzureDeployment is the Azure OpenAI deployment name (Azure only).
	AzureDeployment string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Generator is the interface the query orchestrator calls to produce an
// answer from retrieved context. Implementations must be safe to call from
// multiple goroutines.
type Generator interface {
	// Answer produces a natural-language answer to question, grounded in the
	// provided retrieved chunks.
	Answer(ctx context.Context, question string, retrieved []rag.Result) (string, error)
}
