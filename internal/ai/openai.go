package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Compile-time interface check.
var _ AIProvider = (*OpenAIProvider)(nil)

const openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements AIProvider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	endpoint := openaiAPIURL
	if cfg.BaseURL != "" {
		endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/v1/chat/completions"
	}
	return &OpenAIProvider{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// openaiRequest is the request body for the OpenAI Chat Completions API.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

// openaiMessage is a single message in the OpenAI request.
type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiResponse is the response body from the OpenAI Chat Completions API.
type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

func (r *openaiResponse) errorMessage() string { return r.Error.errorMessage() }

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.model }

// Fabricate writes a fake story using the OpenAI Chat Completions API.
func (p *OpenAIProvider) Fabricate(ctx context.Context, req FabricationRequest) (string, error) {
	systemPrompt, userPrompt := FabricatePrompt(req)

	slog.Debug("calling OpenAI API", "model", p.model, "topic", req.Topic)

	var resp openaiResponse
	err := postJSON(ctx, p.client, p.endpoint, http.Header{"Authorization": {"Bearer " + p.apiKey}}, openaiRequest{
		Model: p.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: creativeTemperature,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("openai fabricate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai fabricate: no choices returned")
	}

	story := cleanStory(resp.Choices[0].Message.Content)
	if story == "" {
		return "", fmt.Errorf("openai fabricate: empty story")
	}
	return story, nil
}
