package llm

import "context"

// Provider is a text-completion backend. Implementations send a single
// prompt and return the model's raw text response.
type Provider interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Config selects and configures a provider backend.
type Config struct {
	Provider string // "gemini" or "openai"
	Model    string
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoints only
}
