package ai

import "context"

// Candidate is an active application offered to the model as a potential
// match for an email.
type Candidate struct {
	ID       string `json:"-"`
	Employer string `json:"employer"`
	Title    string `json:"title"`
}

// ClassificationResult is the parsed model output for one email.
// BestMatchIndex is 1-based and nullable; the model may return a fractional
// or out-of-range value, which the caller coerces to null.
type ClassificationResult struct {
	BestMatchIndex    *float64               `json:"best_match_index"`
	Confidence        float64                `json:"confidence"`
	StageTarget       string                 `json:"stage_target"`
	IsRelevant        bool                   `json:"is_relevant"`
	MessageType       string                 `json:"message_type"`
	Reason            string                 `json:"reason"`
	StageEventPayload map[string]interface{} `json:"stage_event_payload"`
	Raw               string                 `json:"-"`
}

// EmailClassifier is the interface for LLM-backed email classification.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type EmailClassifier interface {
	ClassifyEmail(ctx context.Context, emailText string, candidates []Candidate) (*ClassificationResult, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
