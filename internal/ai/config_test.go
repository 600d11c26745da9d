package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_MODEL", "")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_TIMEOUT_MS", "")
	t.Setenv("GOOGLE_API_KEY", "k")

	cfg := LoadConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 8192, cfg.MaxOutputTokens)
	assert.Equal(t, 0, cfg.TimeoutMs)
	assert.Equal(t, "k", cfg.APIKey)
}

func TestLoadConfig_Ollama(t *testing.T) {
	t.Setenv("AI_PROVIDER", "Ollama")
	t.Setenv("AI_ENDPOINT", "")
	t.Setenv("AI_MODEL", "")

	cfg := LoadConfig()

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.Endpoint)
	assert.Equal(t, "llama3.2", cfg.Model)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AI_ENDPOINT", "http://proxy.local/")
	t.Setenv("AI_MODEL", "gemini-2.5-flash")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_MAX_OUTPUT_TOKENS", "2048")
	t.Setenv("AI_TIMEOUT_MS", "30000")

	cfg := LoadConfig()

	assert.Equal(t, "http://proxy.local", cfg.Endpoint)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 2048, cfg.MaxOutputTokens)
	assert.Equal(t, 30000, cfg.TimeoutMs)
}

func TestLoadConfig_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_TEMPERATURE", "hot")
	t.Setenv("AI_MAX_OUTPUT_TOKENS", "-5")

	cfg := LoadConfig()

	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 8192, cfg.MaxOutputTokens)
}
