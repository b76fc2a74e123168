package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, "openai", client.Name())

	client, err = NewClient(ctx, Config{Provider: " Anthropic ", APIKey: "sk-ant-test"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)

	client, err = NewClient(ctx, Config{Provider: "gemini", APIKey: "gm-test"})
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, client)
	assert.Equal(t, "gemini", client.Name())

	_, err = NewClient(ctx, Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewClient(ctx, Config{Provider: "llama", APIKey: "x"})
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(context.Background(), Config{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	oc := client.(*OpenAIClient)
	assert.Equal(t, "gpt-4o", oc.model)
	assert.Equal(t, "https://api.openai.com/v1", oc.baseURL)
	assert.Equal(t, defaultTimeout, oc.client.Timeout)

	client, err = NewClient(context.Background(), Config{Provider: "anthropic", APIKey: "k", BaseURL: "http://proxy/v1/"})
	require.NoError(t, err)
	ac := client.(*AnthropicClient)
	assert.Equal(t, "http://proxy/v1", ac.baseURL)
}

func TestStripCodeFence(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "SELECT 1;", "SELECT 1;"},
		{"sql fence", "```sql\nSELECT 1;\n```", "SELECT 1;"},
		{"upper fence", "```SQL\nSELECT 1;\n```", "SELECT 1;"},
		{"bare fence", "```\nSELECT 1;\n```", "SELECT 1;"},
		{"whitespace", "  \n```sql\nSELECT 1;```  \n", "SELECT 1;"},
		{"prose untouched", "Here you go: SELECT 1;", "Here you go: SELECT 1;"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.input))
		})
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	assert.Equal(t, "openai API error (status 401): bad key", err.Error())

	err = &APIError{Provider: "anthropic", StatusCode: 500}
	assert.Equal(t, "anthropic API error: status 500", err.Error())
}
