package usecase

import (
	"encoding/json"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/ai"
)

const (
	autoLinkConfidence = 95
	pendingConfidence  = 50
)

// Decision is the sanitized routing outcome for one classified message.
type Decision struct {
	Status      domain.ProcessingStatus
	MatchedJob  *ai.Candidate
	Confidence  int
	StageTarget domain.StageTarget
	Relevance   domain.Relevance
	Payload     map[string]interface{}
	MessageType string
	Raw         string
}

// routeDecision applies the linking policy to raw model output. Model
// values are never trusted as-is: the match index must be an integer inside
// [1, len(candidates)], confidence is clamped to [0,100], and an unknown
// stage target falls back to no_change.
func routeDecision(result *ai.ClassificationResult, candidates []ai.Candidate) Decision {
	confidence := int(result.Confidence)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	var matched *ai.Candidate
	if result.BestMatchIndex != nil {
		v := *result.BestMatchIndex
		if v == float64(int(v)) {
			idx := int(v)
			if idx >= 1 && idx <= len(candidates) {
				matched = &candidates[idx-1]
			}
		}
	}

	relevance := domain.RelevanceNotRelevant
	if result.IsRelevant {
		relevance = domain.RelevanceRelevant
	}

	decision := Decision{
		Confidence:  confidence,
		StageTarget: domain.ParseStageTarget(result.StageTarget),
		Relevance:   relevance,
		Payload:     result.StageEventPayload,
		MessageType: result.MessageType,
		Raw:         rawClassification(result),
	}

	switch {
	case confidence >= autoLinkConfidence && matched != nil:
		decision.Status = domain.StatusAutoLinked
		decision.MatchedJob = matched
	case confidence >= pendingConfidence || result.IsRelevant:
		decision.Status = domain.StatusPendingUser
		decision.MatchedJob = matched
	default:
		decision.Status = domain.StatusIgnored
	}
	return decision
}

func rawClassification(result *ai.ClassificationResult) string {
	if result.Raw != "" {
		return result.Raw
	}
	b, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	return string(b)
}
