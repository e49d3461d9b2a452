package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zdevelops1/goliath/pkg/types"
)

func TestAnthropic_Run(t *testing.T) {
	var captured anthropicMessagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "The answer "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "is 42."},
			},
			"usage": map[string]int{"input_tokens": 20, "output_tokens": 8},
		})
	}))
	defer server.Close()

	client := newAnthropicClient(anthropicConfig{
		APIKey:    "test-key",
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 4096,
		Endpoint:  server.URL,
	})

	history := []types.Turn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	resp, err := client.Run(context.Background(), "what is 6*7", "be brief", history)
	require.NoError(t, err)

	// System prompt travels as a top-level field, not a message.
	assert.Equal(t, "be brief", captured.System)
	require.Len(t, captured.Messages, 3)
	assert.Equal(t, anthropicMessage{Role: "user", Content: "what is 6*7"}, captured.Messages[2])

	// Text blocks are concatenated; non-text blocks are skipped.
	assert.Equal(t, "The answer is 42.", resp.Content)
	assert.Equal(t, "claude", resp.Provider)
	assert.Equal(t, types.Usage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28}, resp.Usage)
}

func TestAnthropic_UpstreamErrorIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"type": "overloaded_error"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newAnthropicClient(anthropicConfig{
		APIKey:   "test-key",
		Model:    "claude-sonnet-4-5-20250929",
		Endpoint: server.URL,
	})

	_, err := client.Run(context.Background(), "x", "", nil)

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "claude", provErr.Provider)
	assert.Contains(t, err.Error(), "503")
}
