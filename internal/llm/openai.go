package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient implements the Client interface for OpenAI-compatible APIs.
// This works with OpenAI, OpenRouter, Together.ai, Groq, and other compatible services.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (p *OpenAIClient) Name() string {
	return ProviderOpenAI
}

// Complete sends a chat completion request.
func (p *OpenAIClient) Complete(ctx context.Context, req Request) (Completion, error) {
	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	payload := openAIRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: maxTokens(req.MaxTokens),
		Temperature:         0, // Deterministic for SQL generation
	}

	var result openAIResponse
	err := postJSON(ctx, p.client, ProviderOpenAI, p.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		payload, &result, openAIErrorMessage)
	if err != nil {
		return Completion{}, err
	}

	if len(result.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: empty choices array", ErrEmptyResponse)
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return Completion{}, ErrEmptyResponse
	}

	return Completion{Text: content, Tokens: result.Usage.TotalTokens}, nil
}

func openAIErrorMessage(body []byte) string {
	var errResp openAIErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		return errResp.Error.Message
	}
	return ""
}

// OpenAI API request/response types

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
