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

const cohereEndpoint = "https://api.cohere.com/v2/chat"

// cohereConfig holds configuration for the Cohere backend. The v2 chat API
// is close to the OpenAI shape on the request side but returns content
// blocks and nested token usage, so it gets its own client.
type cohereConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // default: 60s
	Endpoint    string        // test override; default cohereEndpoint
}

// cohereClient implements Provider using the Cohere v2 chat API.
type cohereClient struct {
	cfg     cohereConfig
	client  *http.Client
	breaker *breaker
}

func newCohereClient(cfg cohereConfig) *cohereClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = cohereEndpoint
	}
	return &cohereClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: newBreaker("cohere"),
	}
}

// cohereChatRequest is the request body for POST /v2/chat.
type cohereChatRequest struct {
	Model       string          `json:"model"`
	Messages    []cohereMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type cohereMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// cohereChatResponse is the response body from POST /v2/chat. Token counts
// arrive as JSON numbers with a fractional part allowed, hence float64.
type cohereChatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Usage struct {
		Tokens struct {
			InputTokens  float64 `json:"input_tokens"`
			OutputTokens float64 `json:"output_tokens"`
		} `json:"tokens"`
	} `json:"usage"`
}

// Run sends the prompt to Cohere and returns the standardised response.
func (c *cohereClient) Run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	resp, err := c.breaker.execute(ctx, func() (*types.ModelResponse, error) {
		return c.run(ctx, prompt, systemPrompt, history)
	})
	if err != nil {
		return nil, &Error{Provider: "cohere", Err: err}
	}
	return resp, nil
}

func (c *cohereClient) run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	messages := make([]cohereMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, cohereMessage{Role: "system", Content: systemPrompt})
	}
	for _, turn := range history {
		messages = append(messages, cohereMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, cohereMessage{Role: "user", Content: prompt})

	reqBody := cohereChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cohere returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData cohereChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var content bytes.Buffer
	for _, block := range respData.Message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	promptTokens := int(respData.Usage.Tokens.InputTokens)
	completionTokens := int(respData.Usage.Tokens.OutputTokens)

	return &types.ModelResponse{
		Content:  content.String(),
		Model:    c.cfg.Model,
		Provider: "cohere",
		Usage: types.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

// Name returns the symbolic provider name.
func (c *cohereClient) Name() string { return "cohere" }

// Model returns the configured model name.
func (c *cohereClient) Model() string { return c.cfg.Model }

// Compile-time assertion.
var _ Provider = (*cohereClient)(nil)
