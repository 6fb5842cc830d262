package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification_PlainJSON(t *testing.T) {
	raw := `{"is_relevant": true, "best_match_index": 1, "confidence": 96, "stage_target": "interview", "message_type": "interview_invite", "reason": "scheduling", "stage_event_payload": {"date": "2026-09-01"}}`

	result, err := parseClassification(raw)
	require.NoError(t, err)
	assert.True(t, result.IsRelevant)
	require.NotNil(t, result.BestMatchIndex)
	assert.Equal(t, float64(1), *result.BestMatchIndex)
	assert.Equal(t, float64(96), result.Confidence)
	assert.Equal(t, "interview", result.StageTarget)
	assert.Equal(t, "2026-09-01", result.StageEventPayload["date"])
}

func TestParseClassification_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"is_relevant\": false, \"best_match_index\": null, \"confidence\": 10, \"stage_target\": \"no_change\"}\n```"

	result, err := parseClassification(raw)
	require.NoError(t, err)
	assert.False(t, result.IsRelevant)
	assert.Nil(t, result.BestMatchIndex)
}

func TestParseClassification_SurroundingProse(t *testing.T) {
	raw := "Here is the classification:\n{\"is_relevant\": true, \"confidence\": 55, \"stage_target\": \"no_change\"}\nLet me know if you need more."

	result, err := parseClassification(raw)
	require.NoError(t, err)
	assert.Equal(t, float64(55), result.Confidence)
	assert.Equal(t, raw, result.Raw)
}

func TestParseClassification_Garbage(t *testing.T) {
	_, err := parseClassification("I could not classify this email.")
	assert.Error(t, err)
}

func TestBuildClassificationPrompt_ListsCandidates(t *testing.T) {
	prompt := buildClassificationPrompt("Subject: hello", []Candidate{
		{ID: "a", Employer: "Acme", Title: "Backend Engineer"},
		{ID: "b", Employer: "Globex", Title: "SRE"},
	})
	assert.Contains(t, prompt, "1: Acme - Backend Engineer")
	assert.Contains(t, prompt, "2: Globex - SRE")
	assert.Contains(t, prompt, "Subject: hello")
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(errors.New("gemini API error (429): RESOURCE_EXHAUSTED")))
	assert.True(t, isQuotaError(errors.New("rate limit exceeded")))
	assert.False(t, isQuotaError(errors.New("invalid request")))
	assert.False(t, isQuotaError(nil))
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:11434: connection refused")))
	assert.False(t, isConnectionError(errors.New("invalid request")))
	assert.False(t, isConnectionError(nil))
}
