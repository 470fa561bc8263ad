package ai

import "context"

// Runtime is the minimal surface the assistant needs from a chat backend.
// OpenAI-compatible endpoints and local Ollama both implement it.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers accepted by --provider and the provider config key.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// OpenRouterBaseURL is used when the openrouter provider has no base URL set.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"
