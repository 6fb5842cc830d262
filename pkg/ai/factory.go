package ai

import (
	"fmt"
	"time"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"

	Timeout time.Duration
}

// NewEmailClassifier creates an EmailClassifier based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewEmailClassifier(cfg Config) (EmailClassifier, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClassifier(cfg.GeminiAPIKey, cfg.Timeout), nil

	case ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout), nil

	default:
		// Auto: use both with fallback routing when Gemini is configured.
		ollama := NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.Timeout)
		if cfg.GeminiAPIKey != "" {
			return NewFallbackService(NewGeminiClassifier(cfg.GeminiAPIKey, cfg.Timeout), ollama), nil
		}
		return ollama, nil
	}
}
