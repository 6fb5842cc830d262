package usecase

import (
	"fmt"

	ingestdomain "jobtrack-backend/internal/ingest/domain"
	jobdomain "jobtrack-backend/internal/job/domain"
	"jobtrack-backend/pkg/apperr"
)

// StageTransitioner is the piece of the job layer the ingestion pipeline
// needs: recording one stage change on one application.
type StageTransitioner interface {
	TransitionStage(jobID string, toStage string, occurredAtSeconds int64, metadata map[string]interface{}, outcome string) error
}

type stageTransition struct {
	toStage string
	outcome string
}

// stageTransitions maps a classified stage target onto the application
// stage machine. Targets absent from the table cause no side effect.
var stageTransitions = map[ingestdomain.StageTarget]stageTransition{
	ingestdomain.StageTargetApplied:    {toStage: jobdomain.StageApplied},
	ingestdomain.StageTargetInterview:  {toStage: jobdomain.StageInterview},
	ingestdomain.StageTargetAssessment: {toStage: jobdomain.StageAssessment},
	ingestdomain.StageTargetOffer:      {toStage: jobdomain.StageOffer},
	ingestdomain.StageTargetRejected:   {toStage: jobdomain.StageClosed, outcome: "rejected"},
	ingestdomain.StageTargetWithdrawn:  {toStage: jobdomain.StageClosed, outcome: "withdrawn"},
}

// applyStageEvent records the stage change an auto-linked message implies.
// Callers gate on the upsert's transition flag, so each message produces at
// most one event across all syncs.
func applyStageEvent(jobs StageTransitioner, msg *ingestdomain.Message, payload map[string]interface{}) error {
	if msg.MatchedJobID == nil {
		return nil
	}
	transition, ok := stageTransitions[msg.StageTarget]
	if !ok {
		return nil
	}

	metadata := map[string]interface{}{
		"actor": "system",
		"label": stageEventLabel(msg),
	}
	if len(payload) > 0 {
		metadata["details"] = payload
	}

	err := jobs.TransitionStage(*msg.MatchedJobID, transition.toStage, msg.ReceivedAt.Unix(), metadata, transition.outcome)
	if err != nil {
		return apperr.Persistence(err, "stage event write failed")
	}
	return nil
}

func stageEventLabel(msg *ingestdomain.Message) string {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	return fmt.Sprintf("Email from %s: %s", msg.FromDomain, subject)
}
