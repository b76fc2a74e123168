package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient implements the Client interface using Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client. baseURL may be empty.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *GeminiClient) Name() string {
	return ProviderGemini
}

// Complete sends a generateContent request.
func (p *GeminiClient) Complete(ctx context.Context, req Request) (Completion, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: int32(maxTokens(req.MaxTokens)),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Completion{}, ErrEmptyResponse
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Completion{Text: text, Tokens: tokens}, nil
}
