package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const anthropicAPIVersion = "2023-06-01"

// AnthropicClient implements the Client interface for Anthropic's Messages API.
type AnthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey, model, baseURL string, timeout time.Duration) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (p *AnthropicClient) Name() string {
	return ProviderAnthropic
}

// Complete sends a messages request.
func (p *AnthropicClient) Complete(ctx context.Context, req Request) (Completion, error) {
	payload := anthropicRequest{
		Model:     p.model,
		System:    req.System,
		MaxTokens: maxTokens(req.MaxTokens),
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	var result anthropicResponse
	err := postJSON(ctx, p.client, ProviderAnthropic, p.baseURL+"/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": anthropicAPIVersion,
		},
		payload, &result, anthropicErrorMessage)
	if err != nil {
		return Completion{}, err
	}

	if len(result.Content) == 0 {
		return Completion{}, fmt.Errorf("%w: empty content array", ErrEmptyResponse)
	}

	// Concatenate text blocks; other block types are ignored.
	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{
		Text:   sb.String(),
		Tokens: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}

func anthropicErrorMessage(body []byte) string {
	var errResp anthropicErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		return errResp.Error.Message
	}
	return ""
}

// Anthropic API request/response types

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
