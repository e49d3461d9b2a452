// Package config provides configuration management for Goliath.
// Settings are read from environment variables, with a .env file in the
// working directory filling in anything not already exported (secrets never
// live in source). Every option has a sensible default, so a fresh install
// works with nothing but a provider API key.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the Goliath engine and its backends.
type Config struct {
	Engine   EngineConfig
	Memory   MemoryConfig
	Provider ProviderConfig
	Backup   BackupConfig
}

// EngineConfig contains task-execution settings shared by all providers.
type EngineConfig struct {
	SystemPrompt string  // Base system instructions sent with every task
	MaxTokens    int     // Completion token cap (default: 4096)
	Temperature  float64 // Sampling temperature (default: 0.7)
}

// MemoryConfig contains persistent-memory settings.
type MemoryConfig struct {
	Path       string // Memory file location (default: ~/.goliath/memory.json)
	MaxHistory int    // Conversation turns kept before trimming (default: 20)
}

// ProviderConfig contains credentials and model defaults for every backend.
// Each backend reads only its own fields; a missing key for one backend never
// affects another.
type ProviderConfig struct {
	Default string // Provider used when none is requested (default: grok)

	XAIAPIKey  string // xAI API key
	XAIBaseURL string // default: https://api.x.ai/v1
	XAIModel   string // default: grok-3-latest

	OpenAIAPIKey string // OpenAI API key
	OpenAIModel  string // default: gpt-4o

	AnthropicAPIKey string // Anthropic API key
	AnthropicModel  string // default: claude-sonnet-4-5-20250929

	GoogleAPIKey string // Google API key (Gemini)
	GoogleModel  string // default: gemini-2.0-flash

	CohereAPIKey string // Cohere API key
	CohereModel  string // default: command-r-plus

	MistralAPIKey string // Mistral API key
	MistralModel  string // default: mistral-large-latest

	DeepSeekAPIKey  string // DeepSeek API key
	DeepSeekBaseURL string // default: https://api.deepseek.com
	DeepSeekModel   string // default: deepseek-chat

	PerplexityAPIKey  string // Perplexity API key
	PerplexityBaseURL string // default: https://api.perplexity.ai
	PerplexityModel   string // default: sonar-pro

	OllamaBaseURL string // default: http://localhost:11434/v1 (no key needed)
	OllamaModel   string // default: llama3.1
}

// BackupConfig contains memory-backup settings for goliath-backup.
type BackupConfig struct {
	Path             string // Backup directory (default: ~/.goliath/backups)
	Interval         string // Interval between automatic backups (default: 24h)
	Verify           bool   // Verify snapshots after creation (default: true)
	RetentionHourly  int    // Hourly snapshots kept (default: 24)
	RetentionDaily   int    // Daily snapshots kept (default: 7)
	RetentionWeekly  int    // Weekly snapshots kept (default: 4)
	RetentionMonthly int    // Monthly snapshots kept (default: 12)
}

// DefaultSystemPrompt is the base instruction text sent with every task.
const DefaultSystemPrompt = "You are GOLIATH, a universal AI automation engine. " +
	"When given a task, respond with a clear, actionable answer. " +
	"If the task requires multiple steps, break it down. " +
	"Be concise and precise."

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first; exported variables always win over the file.
func Load() (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to a relative data directory when HOME is unset.
		home = "."
	}
	dataDir := filepath.Join(home, ".goliath")

	return &Config{
		Engine: EngineConfig{
			SystemPrompt: getEnv("GOLIATH_SYSTEM_PROMPT", DefaultSystemPrompt),
			MaxTokens:    getEnvInt("GOLIATH_MAX_TOKENS", 4096),
			Temperature:  getEnvFloat("GOLIATH_TEMPERATURE", 0.7),
		},
		Memory: MemoryConfig{
			Path:       getEnv("GOLIATH_MEMORY_PATH", filepath.Join(dataDir, "memory.json")),
			MaxHistory: getEnvInt("GOLIATH_MEMORY_MAX_HISTORY", 20),
		},
		Provider: ProviderConfig{
			Default: getEnv("DEFAULT_PROVIDER", "grok"),

			XAIAPIKey:  getEnv("XAI_API_KEY", ""),
			XAIBaseURL: getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),
			XAIModel:   getEnv("XAI_DEFAULT_MODEL", "grok-3-latest"),

			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_DEFAULT_MODEL", "gpt-4o"),

			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_DEFAULT_MODEL", "claude-sonnet-4-5-20250929"),

			GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
			GoogleModel:  getEnv("GOOGLE_DEFAULT_MODEL", "gemini-2.0-flash"),

			CohereAPIKey: getEnv("COHERE_API_KEY", ""),
			CohereModel:  getEnv("COHERE_DEFAULT_MODEL", "command-r-plus"),

			MistralAPIKey: getEnv("MISTRAL_API_KEY", ""),
			MistralModel:  getEnv("MISTRAL_DEFAULT_MODEL", "mistral-large-latest"),

			DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			DeepSeekModel:   getEnv("DEEPSEEK_DEFAULT_MODEL", "deepseek-chat"),

			PerplexityAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
			PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			PerplexityModel:   getEnv("PERPLEXITY_DEFAULT_MODEL", "sonar-pro"),

			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
			OllamaModel:   getEnv("OLLAMA_DEFAULT_MODEL", "llama3.1"),
		},
		Backup: BackupConfig{
			Path:             getEnv("GOLIATH_BACKUP_PATH", filepath.Join(dataDir, "backups")),
			Interval:         getEnv("GOLIATH_BACKUP_INTERVAL", "24h"),
			Verify:           getEnvBool("GOLIATH_BACKUP_VERIFY", true),
			RetentionHourly:  getEnvInt("GOLIATH_BACKUP_RETENTION_HOURLY", 24),
			RetentionDaily:   getEnvInt("GOLIATH_BACKUP_RETENTION_DAILY", 7),
			RetentionWeekly:  getEnvInt("GOLIATH_BACKUP_RETENTION_WEEKLY", 4),
			RetentionMonthly: getEnvInt("GOLIATH_BACKUP_RETENTION_MONTHLY", 12),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. It recognizes "true", "1", "yes" and "false", "0", "no".
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
