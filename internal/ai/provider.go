package ai

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultMaxTokens   = 400
	defaultHTTPTimeout = 60 * time.Second
)

// AIProvider is the interface that all text-generation providers implement.
type AIProvider interface {
	// Fabricate writes a believable but invented story about req.Topic in
	// the style and length of req.Reference.
	Fabricate(ctx context.Context, req FabricationRequest) (string, error)

	// Model returns the model identifier used for requests.
	Model() string
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (AIProvider, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "gemini":
		p, err := NewGeminiProvider(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
