package ai

import "time"

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider  string // "openai" | "anthropic" | "gemini"
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string        // overrides the provider endpoint (for testing)
	Timeout   time.Duration // HTTP client timeout; the fabrication race is usually shorter
}

// FabricationRequest describes the fake story to write.
type FabricationRequest struct {
	Topic       string
	Reference   string // the real excerpt whose style and length to match
	TargetWords int
	Sentences   int
}
