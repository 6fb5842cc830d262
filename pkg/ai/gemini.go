package ai

import (
	"context"
	"fmt"
	"time"

	"jobtrack-backend/pkg/gemini"
)

// GeminiClassifier implements EmailClassifier on top of the raw Gemini client.
type GeminiClassifier struct {
	service *gemini.GeminiService
}

func NewGeminiClassifier(apiKey string, timeout time.Duration) *GeminiClassifier {
	return &GeminiClassifier{service: gemini.NewGeminiService(apiKey, timeout)}
}

func (g *GeminiClassifier) ClassifyEmail(ctx context.Context, emailText string, candidates []Candidate) (*ClassificationResult, error) {
	prompt := buildClassificationPrompt(emailText, candidates)
	raw, err := g.service.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("gemini classification failed: %w", err)
	}
	return parseClassification(raw)
}
