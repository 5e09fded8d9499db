package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Compile-time interface check.
var _ AIProvider = (*AnthropicProvider)(nil)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider implements AIProvider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewAnthropicProvider creates an AnthropicProvider.
func NewAnthropicProvider(cfg ProviderConfig) *AnthropicProvider {
	endpoint := anthropicAPIURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/messages"
	}
	return &AnthropicProvider{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// anthropicRequest is the request body for the Anthropic Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

// anthropicMessage is a single message in the Anthropic request.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Anthropic Messages API.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *apiError `json:"error"`
}

func (r *anthropicResponse) errorMessage() string { return r.Error.errorMessage() }

// text returns the first text block.
func (r *anthropicResponse) text() (string, bool) {
	for _, block := range r.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, true
		}
	}
	return "", false
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string { return p.model }

// Fabricate writes a fake story using the Anthropic Messages API.
func (p *AnthropicProvider) Fabricate(ctx context.Context, req FabricationRequest) (string, error) {
	systemPrompt, userPrompt := FabricatePrompt(req)

	slog.Debug("calling Anthropic API", "model", p.model, "topic", req.Topic)

	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	var resp anthropicResponse
	err := postJSON(ctx, p.client, p.endpoint, header, anthropicRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: userPrompt}},
		Temperature: creativeTemperature,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("anthropic fabricate: %w", err)
	}

	text, ok := resp.text()
	if !ok {
		return "", fmt.Errorf("anthropic fabricate: no content blocks returned")
	}
	story := cleanStory(text)
	if story == "" {
		return "", fmt.Errorf("anthropic fabricate: empty story")
	}
	return story, nil
}
