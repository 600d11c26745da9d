package ai

import (
	"os"
	"strconv"
	"strings"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// Config holds everything needed to construct a Completer.
type Config struct {
	Provider        Provider
	Endpoint        string
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	TimeoutMs       int // 0 means the call is bounded only by its context
}

// DefaultConfig returns the Gemini defaults the planner was tuned against.
func DefaultConfig() Config {
	return Config{
		Provider:        ProviderGemini,
		Endpoint:        "https://generativelanguage.googleapis.com",
		Model:           "gemini-2.0-flash",
		Temperature:     0.7,
		MaxOutputTokens: 8192,
	}
}

// LoadConfig reads AI_* variables, falling back to defaults for unset values.
// Selecting the ollama provider switches the endpoint and model defaults.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(strings.ToLower(os.Getenv("AI_PROVIDER"))); v == string(ProviderOllama) {
		cfg.Provider = ProviderOllama
		cfg.Endpoint = "http://localhost:11434"
		cfg.Model = "llama3.2"
	}
	if v := os.Getenv("AI_ENDPOINT"); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.Model = v
	}
	cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 2 {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("AI_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("AI_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.TimeoutMs = n
		}
	}

	return cfg
}
