package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"
)

// Compile-time interface check.
var _ AIProvider = (*GeminiProvider)(nil)

// GeminiProvider implements AIProvider using the Gemini API through the
// genai SDK.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiProvider creates a GeminiProvider. It does not contact the API.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
	}, nil
}

// Model returns the configured model name.
func (p *GeminiProvider) Model() string { return p.model }

// Fabricate writes a fake story using Gemini GenerateContent.
func (p *GeminiProvider) Fabricate(ctx context.Context, req FabricationRequest) (string, error) {
	systemPrompt, userPrompt := FabricatePrompt(req)

	slog.Debug("calling Gemini API", "model", p.model)

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   p.maxTokens,
		Temperature:       genai.Ptr(float32(creativeTemperature)),
	})
	if err != nil {
		return "", fmt.Errorf("gemini fabricate: %w", err)
	}

	story := cleanStory(resp.Text())
	if story == "" {
		return "", fmt.Errorf("gemini fabricate: empty story")
	}
	return story, nil
}
