// Package llm provides language model clients for SQL generation and result explanation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client defines the interface for LLM integrations.
type Client interface {
	// Complete sends one prompt and returns the model's text reply.
	Complete(ctx context.Context, req Request) (Completion, error)

	// Name returns the provider name for logging/debugging.
	Name() string
}

// Request is a single system + user prompt exchange.
type Request struct {
	System    string // System instructions (may be empty)
	Prompt    string // User message
	MaxTokens int    // Max tokens for response (0 = provider default)
}

// Completion is the model's reply.
type Completion struct {
	Text   string
	Tokens int // Tokens used (for cost tracking)
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("LLM API key is required")

	// ErrEmptyResponse is returned when the provider answers without text.
	ErrEmptyResponse = errors.New("no text in model response")
)

// Config holds LLM provider configuration.
type Config struct {
	Provider string        `yaml:"provider"` // "openai", "anthropic" or "gemini"
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"` // For OpenRouter, proxies, etc.
	Timeout  time.Duration `yaml:"timeout"`
}

// NewClient creates an LLM client based on configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = "gpt-4o"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.openai.com/v1"
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case ProviderAnthropic:
		if cfg.Model == "" {
			cfg.Model = "claude-sonnet-4-20250514"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "https://api.anthropic.com/v1"
		}
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil

	case ProviderGemini:
		if cfg.Model == "" {
			cfg.Model = "gemini-2.5-flash"
		}
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic, gemini)", cfg.Provider)
	}
}

// StripCodeFence removes a markdown code fence wrapped around a reply.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"```sql", "```SQL", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func maxTokens(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
