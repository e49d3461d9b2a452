package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zdevelops1/goliath/pkg/types"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// anthropicConfig holds configuration for the Claude backend. Anthropic is
// the one backend that does not speak the OpenAI-compatible format: the
// system prompt is a top-level field and usage is reported as input/output.
type anthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration // default: 60s
	Endpoint  string        // test override; default anthropicEndpoint
}

// anthropicClient implements Provider using the Anthropic Messages API.
type anthropicClient struct {
	cfg     anthropicConfig
	client  *http.Client
	breaker *breaker
}

func newAnthropicClient(cfg anthropicConfig) *anthropicClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = anthropicEndpoint
	}
	return &anthropicClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: newBreaker("claude"),
	}
}

// anthropicMessagesRequest is the request body for POST /v1/messages.
type anthropicMessagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicMessagesResponse is the response body from POST /v1/messages.
type anthropicMessagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Run sends the prompt to Claude and returns the standardised response.
func (c *anthropicClient) Run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	resp, err := c.breaker.execute(ctx, func() (*types.ModelResponse, error) {
		return c.run(ctx, prompt, systemPrompt, history)
	})
	if err != nil {
		return nil, &Error{Provider: "claude", Err: err}
	}
	return resp, nil
}

func (c *anthropicClient) run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]anthropicMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, anthropicMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: prompt})

	reqBody := anthropicMessagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData anthropicMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Claude returns a list of content blocks; concatenate the text ones.
	var content bytes.Buffer
	for _, block := range respData.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &types.ModelResponse{
		Content:  content.String(),
		Model:    c.cfg.Model,
		Provider: "claude",
		Usage: types.Usage{
			PromptTokens:     respData.Usage.InputTokens,
			CompletionTokens: respData.Usage.OutputTokens,
			TotalTokens:      respData.Usage.InputTokens + respData.Usage.OutputTokens,
		},
	}, nil
}

// Name returns the symbolic provider name.
func (c *anthropicClient) Name() string { return "claude" }

// Model returns the configured model name.
func (c *anthropicClient) Model() string { return c.cfg.Model }

// Compile-time assertion.
var _ Provider = (*anthropicClient)(nil)
