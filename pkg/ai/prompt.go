package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// buildClassificationPrompt renders the shared prompt used by every provider
// so classification quality differences come from the model, not the wording.
func buildClassificationPrompt(emailText string, candidates []Candidate) string {
	var sb strings.Builder
	sb.WriteString(`You are an assistant that classifies job application emails for a job tracker.

The user has these active applications (index: employer - title):
`)
	if len(candidates) == 0 {
		sb.WriteString("(none)\n")
	}
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("%d: %s - %s\n", i+1, c.Employer, c.Title))
	}
	sb.WriteString(`
Analyze the email below and respond with ONLY a JSON object, no other text:
{
  "is_relevant": true or false (is this about one of the user's job applications?),
  "best_match_index": 1-based index of the matching application above, or null if none,
  "confidence": 0-100 (how confident you are in the match AND classification),
  "stage_target": one of "applied", "interview", "assessment", "offer", "rejected", "withdrawn", "no_change",
  "message_type": short label such as "interview_invite", "rejection", "offer", "application_receipt", "recruiter_outreach", "other",
  "reason": one short sentence explaining the classification,
  "stage_event_payload": object with any useful details (e.g. interview date, location), or {}
}

Rules:
- "stage_target" describes where this email moves the application, "no_change" if it does not.
- A confirmation that an application was received is stage_target "applied".
- Promotional or job-board digest mail is is_relevant false.

EMAIL:
`)
	sb.WriteString(emailText)
	sb.WriteString("\n\nJSON OUTPUT:")
	return sb.String()
}

// parseClassification extracts the JSON object from a model response,
// tolerating markdown fences and surrounding prose.
func parseClassification(raw string) (*ClassificationResult, error) {
	text := extractJSON(raw)
	var result ClassificationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification JSON: %w", err)
	}
	result.Raw = strings.TrimSpace(raw)
	return &result, nil
}

func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}
	return text
}
