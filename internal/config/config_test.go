package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultSystemPrompt, cfg.Engine.SystemPrompt)
	assert.Equal(t, 4096, cfg.Engine.MaxTokens)
	assert.Equal(t, 0.7, cfg.Engine.Temperature)

	assert.Equal(t, 20, cfg.Memory.MaxHistory)
	assert.Equal(t, filepath.Join(home, ".goliath", "memory.json"), cfg.Memory.Path)

	assert.Equal(t, "grok", cfg.Provider.Default)
	assert.Equal(t, "https://api.x.ai/v1", cfg.Provider.XAIBaseURL)
	assert.Equal(t, "grok-3-latest", cfg.Provider.XAIModel)
	assert.Equal(t, "gpt-4o", cfg.Provider.OpenAIModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.Provider.GoogleModel)
	assert.Equal(t, "command-r-plus", cfg.Provider.CohereModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Provider.OllamaBaseURL)

	assert.Equal(t, "24h", cfg.Backup.Interval)
	assert.True(t, cfg.Backup.Verify)
	assert.Equal(t, 24, cfg.Backup.RetentionHourly)
	assert.Equal(t, 7, cfg.Backup.RetentionDaily)
	assert.Equal(t, 4, cfg.Backup.RetentionWeekly)
	assert.Equal(t, 12, cfg.Backup.RetentionMonthly)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOLIATH_SYSTEM_PROMPT", "You are a test harness.")
	t.Setenv("GOLIATH_MAX_TOKENS", "512")
	t.Setenv("GOLIATH_TEMPERATURE", "0.2")
	t.Setenv("GOLIATH_MEMORY_PATH", "/tmp/goliath-test/memory.json")
	t.Setenv("GOLIATH_MEMORY_MAX_HISTORY", "6")
	t.Setenv("DEFAULT_PROVIDER", "openai")
	t.Setenv("XAI_API_KEY", "xai-test-key")
	t.Setenv("GOLIATH_BACKUP_VERIFY", "false")
	t.Setenv("GOLIATH_BACKUP_RETENTION_DAILY", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "You are a test harness.", cfg.Engine.SystemPrompt)
	assert.Equal(t, 512, cfg.Engine.MaxTokens)
	assert.Equal(t, 0.2, cfg.Engine.Temperature)
	assert.Equal(t, "/tmp/goliath-test/memory.json", cfg.Memory.Path)
	assert.Equal(t, 6, cfg.Memory.MaxHistory)
	assert.Equal(t, "openai", cfg.Provider.Default)
	assert.Equal(t, "xai-test-key", cfg.Provider.XAIAPIKey)
	assert.False(t, cfg.Backup.Verify)
	assert.Equal(t, 3, cfg.Backup.RetentionDaily)
}

func TestLoad_UnparseableNumbersFallBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOLIATH_MAX_TOKENS", "lots")
	t.Setenv("GOLIATH_TEMPERATURE", "warm")
	t.Setenv("GOLIATH_BACKUP_VERIFY", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.Engine.MaxTokens)
	assert.Equal(t, 0.7, cfg.Engine.Temperature)
	assert.True(t, cfg.Backup.Verify)
}

func TestGetEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"YES", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"NO", false},
	}
	for _, tc := range cases {
		t.Setenv("GOLIATH_TEST_BOOL", tc.value)
		assert.Equal(t, tc.want, getEnvBool("GOLIATH_TEST_BOOL", !tc.want), "value %q", tc.value)
	}
}
