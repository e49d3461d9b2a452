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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiConfig holds configuration for the Gemini backend. The Generative
// Language API has its own wire format: system instructions and generation
// settings are separate request fields, turns are "contents" with parts, and
// the assistant role is called "model".
type geminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // default: 60s
	BaseURL     string        // test override; default geminiBaseURL
}

// geminiClient implements Provider using the Gemini generateContent API.
type geminiClient struct {
	cfg     geminiConfig
	client  *http.Client
	breaker *breaker
}

func newGeminiClient(cfg geminiConfig) *geminiClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiBaseURL
	}
	return &geminiClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: newBreaker("gemini"),
	}
}

// geminiGenerateRequest is the request body for
// POST /models/{model}:generateContent.
type geminiGenerateRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature"`
}

// geminiGenerateResponse is the response body from generateContent.
type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Run sends the prompt to Gemini and returns the standardised response.
func (c *geminiClient) Run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	resp, err := c.breaker.execute(ctx, func() (*types.ModelResponse, error) {
		return c.run(ctx, prompt, systemPrompt, history)
	})
	if err != nil {
		return nil, &Error{Provider: "gemini", Err: err}
	}
	return resp, nil
}

func (c *geminiClient) run(ctx context.Context, prompt, systemPrompt string, history []types.Turn) (*types.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	contents := make([]geminiContent, 0, len(history)+1)
	for _, turn := range history {
		// Gemini's name for the assistant role is "model".
		role := turn.Role
		if role == types.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: prompt}},
	})

	reqBody := geminiGenerateRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: c.cfg.MaxTokens,
			Temperature:     c.cfg.Temperature,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(body))
	}

	var respData geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respData.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var content bytes.Buffer
	for _, part := range respData.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}

	return &types.ModelResponse{
		Content:  content.String(),
		Model:    c.cfg.Model,
		Provider: "gemini",
		Usage: types.Usage{
			PromptTokens:     respData.UsageMetadata.PromptTokenCount,
			CompletionTokens: respData.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      respData.UsageMetadata.PromptTokenCount + respData.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

// Name returns the symbolic provider name.
func (c *geminiClient) Name() string { return "gemini" }

// Model returns the configured model name.
func (c *geminiClient) Model() string { return c.cfg.Model }

// Compile-time assertion.
var _ Provider = (*geminiClient)(nil)
