package models

import (
	"os"
	"strconv"
	"time"
)

// AIConfig holds configuration for the LLM-backed semantic judge and rule
// suggester.
type AIConfig struct {
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	SystemContext string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
}

// DefaultAIConfig returns sensible defaults overridable from the environment.
func DefaultAIConfig() *AIConfig {
	config := &AIConfig{
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   os.Getenv("LLM_MODEL"),
		SystemContext: "You are a strict data validation engine.",
		MaxTokens:     4000,
		Temperature:   0.1,
		Timeout:       120 * time.Second,
	}

	if config.OpenAIModel == "" {
		config.OpenAIModel = "gpt-4o-mini"
	}
	if base := os.Getenv("LLM_BASE_URL"); base != "" {
		config.OpenAIBaseURL = base
	}
	if maxTokensStr := os.Getenv("LLM_MAX_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil {
			config.MaxTokens = maxTokens
		}
	}
	if tempStr := os.Getenv("LLM_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 64); err == nil {
			config.Temperature = temp
		}
	}

	return config
}
