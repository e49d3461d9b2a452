package provider

import (
	"fmt"

	"github.com/zdevelops1/goliath/internal/config"
)

// Factories for the built-in backends. Each one validates its own credentials
// at construction so a misconfigured backend fails before the first task, not
// in the middle of one.

func newGrokProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.XAIAPIKey == "" {
		return nil, fmt.Errorf("XAI_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "grok",
		APIKey:      cfg.Provider.XAIAPIKey,
		BaseURL:     cfg.Provider.XAIBaseURL,
		Model:       cfg.Provider.XAIModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newOpenAIProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "openai",
		APIKey:      cfg.Provider.OpenAIAPIKey,
		BaseURL:     "https://api.openai.com/v1",
		Model:       cfg.Provider.OpenAIModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newClaudeProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newAnthropicClient(anthropicConfig{
		APIKey:    cfg.Provider.AnthropicAPIKey,
		Model:     cfg.Provider.AnthropicModel,
		MaxTokens: cfg.Engine.MaxTokens,
	}), nil
}

func newGeminiProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newGeminiClient(geminiConfig{
		APIKey:      cfg.Provider.GoogleAPIKey,
		Model:       cfg.Provider.GoogleModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newCohereProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.CohereAPIKey == "" {
		return nil, fmt.Errorf("COHERE_API_KEY is not set. Get one at https://dashboard.cohere.com/api-keys and add it to .env or export it as an environment variable")
	}
	return newCohereClient(cohereConfig{
		APIKey:      cfg.Provider.CohereAPIKey,
		Model:       cfg.Provider.CohereModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newMistralProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.MistralAPIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "mistral",
		APIKey:      cfg.Provider.MistralAPIKey,
		BaseURL:     "https://api.mistral.ai/v1",
		Model:       cfg.Provider.MistralModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newDeepSeekProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.DeepSeekAPIKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "deepseek",
		APIKey:      cfg.Provider.DeepSeekAPIKey,
		BaseURL:     cfg.Provider.DeepSeekBaseURL,
		Model:       cfg.Provider.DeepSeekModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

func newPerplexityProvider(cfg *config.Config) (Provider, error) {
	if cfg.Provider.PerplexityAPIKey == "" {
		return nil, fmt.Errorf("PERPLEXITY_API_KEY is not set. Export it as an environment variable or add it to .env")
	}
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "perplexity",
		APIKey:      cfg.Provider.PerplexityAPIKey,
		BaseURL:     cfg.Provider.PerplexityBaseURL,
		Model:       cfg.Provider.PerplexityModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}

// Ollama runs locally and needs no API key.
func newOllamaProvider(cfg *config.Config) (Provider, error) {
	return newOpenAICompatClient(openAICompatConfig{
		Name:        "ollama",
		BaseURL:     cfg.Provider.OllamaBaseURL,
		Model:       cfg.Provider.OllamaModel,
		MaxTokens:   cfg.Engine.MaxTokens,
		Temperature: cfg.Engine.Temperature,
	}), nil
}
