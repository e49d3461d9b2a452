package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zdevelops1/goliath/pkg/types"
)

// openAICompatConfig holds configuration for any backend that speaks the
// OpenAI chat-completions wire format (OpenAI, xAI, DeepSeek, Mistral,
// Perplexity, local Ollama). The backends differ only in endpoint,
// credentials, and default model.
type openAICompatConfig struct {
	Name        string // symbolic provider name this client serves
	APIKey      string // empty is valid for keyless backends (Ollama)
	BaseURL     string // e.g. https://api.x.ai/v1
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // default: 60s
}

// openAICompatClient implements Provider against POST {base}/chat/completions.
type openAICompatClient struct {
	cfg     openAICompatConfig
	client  *http.Client
	breaker *breaker
}

func newOpenAICompatClient(cfg openAICompatConfig) *openAICompatClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &openAICompatClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: newBreaker(cfg.Name),
	}
}

// chatRequest is the request body for POST /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from POST /chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Run sends the prompt (plus system instructions and optional history) to the
// backend and returns the standardised response.
func (c *openAICompatClient) Run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	resp, err := c.breaker.execute(ctx, func() (*types.ModelResponse, error) {
		return c.run(ctx, prompt, systemPrompt, history)
	})
	if err != nil {
		return nil, &Error{Provider: c.cfg.Name, Err: err}
	}
	return resp, nil
}

func (c *openAICompatClient) run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]chatMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s returned status %d: %s", c.cfg.Name, resp.StatusCode, string(body))
	}

	var respData chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respData.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.cfg.Name)
	}

	return &types.ModelResponse{
		Content:  respData.Choices[0].Message.Content,
		Model:    c.cfg.Model,
		Provider: c.cfg.Name,
		Usage: types.Usage{
			PromptTokens:     respData.Usage.PromptTokens,
			CompletionTokens: respData.Usage.CompletionTokens,
			TotalTokens:      respData.Usage.PromptTokens + respData.Usage.CompletionTokens,
		},
	}, nil
}

// Name returns the symbolic provider name.
func (c *openAICompatClient) Name() string { return c.cfg.Name }

// Model returns the configured model name.
func (c *openAICompatClient) Model() string { return c.cfg.Model }

// Compile-time assertion.
var _ Provider = (*openAICompatClient)(nil)
