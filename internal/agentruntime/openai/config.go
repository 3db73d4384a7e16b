package openai

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rca-orchestrator/orchestrator/internal/orcherr"
)

// Config holds OpenAI-compatible LLM configuration, trimmed from the
// teacher's internal/llm/openai.Config down to the fields the agent
// runtime's Function-Calling path actually uses — ThinkingMode,
// ToolCallMode and ReasoningEffort auto-detection are dropped along with
// internal/llm/capabilities.go (see DESIGN.md): every agent in this domain
// always talks Function Calling, so there is no mode to resolve.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
	MaxRetries  int
	HTTPTimeout int // seconds
}

// NewConfigFromEnv builds a Config from LLM_* environment variables,
// following the teacher's NewConfigFromEnv naming and defaults.
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:      getEnvOrDefault("LLM_API_KEY", ""),
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o"),
		Temperature: getEnvFloat32Ptr("LLM_TEMPERATURE"),
		MaxTokens:   getEnvIntOrDefault("LLM_MAX_TOKENS", 0),
		MaxRetries:  getEnvIntOrDefault("LLM_MAX_RETRIES", 1),
		HTTPTimeout: getEnvIntOrDefault("LLM_HTTP_TIMEOUT", 300),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required fields are present and well-formed,
// returning a *orcherr.ConfigError: fatal at startup per spec.md §7.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return &orcherr.ConfigError{Msg: "LLM_API_KEY is required; set it in .env or the environment"}
	}
	if c.Model == "" {
		return &orcherr.ConfigError{Msg: "LLM_MODEL cannot be empty"}
	}
	if c.Temperature != nil && (*c.Temperature < 0.0 || *c.Temperature > 2.0) {
		return &orcherr.ConfigError{Msg: fmt.Sprintf("LLM_TEMPERATURE must be between 0.0 and 2.0, got %f", *c.Temperature)}
	}
	if c.MaxRetries < 0 {
		return &orcherr.ConfigError{Msg: fmt.Sprintf("LLM_MAX_RETRIES cannot be negative, got %d", c.MaxRetries)}
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat32Ptr(key string) *float32 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			f := float32(parsed)
			return &f
		}
	}
	return nil
}
