package usecase

import (
	"fmt"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/internal/ingest/repository"
	"jobtrack-backend/pkg/apperr"
)

// ReviewUsecase covers the human side of the pipeline: resolving messages
// the classifier parked as pending_user.
type ReviewUsecase interface {
	// Approve links a pending message to an application and applies its
	// stage target, with the reviewer as actor.
	Approve(messageID, jobID, decidedBy string) (*domain.Message, error)
	// Deny marks a pending message ignored. The decision is sticky: later
	// syncs will not resurface it.
	Deny(messageID, decidedBy string) (*domain.Message, error)
	ListPending(limit, offset int) ([]*domain.Message, int64, error)
}

type reviewUsecase struct {
	messages repository.MessageRepository
	jobs     StageTransitioner
}

func NewReviewUsecase(messages repository.MessageRepository, jobs StageTransitioner) ReviewUsecase {
	return &reviewUsecase{messages: messages, jobs: jobs}
}

func (u *reviewUsecase) Approve(messageID, jobID, decidedBy string) (*domain.Message, error) {
	msg, err := u.pending(messageID)
	if err != nil {
		return nil, err
	}

	decided, err := u.messages.Decide(messageID, domain.StatusManualLinked, &jobID, decidedBy, time.Now())
	if err != nil {
		return nil, err
	}

	// A pending message never produced a stage event, so this is the only
	// one it will ever get.
	if transition, ok := stageTransitions[msg.StageTarget]; ok {
		metadata := map[string]interface{}{
			"actor": decidedBy,
			"label": stageEventLabel(msg),
		}
		if err := u.jobs.TransitionStage(jobID, transition.toStage, msg.ReceivedAt.Unix(), metadata, transition.outcome); err != nil {
			return nil, apperr.Persistence(err, "stage event write failed")
		}
	}
	return decided, nil
}

func (u *reviewUsecase) Deny(messageID, decidedBy string) (*domain.Message, error) {
	if _, err := u.pending(messageID); err != nil {
		return nil, err
	}
	return u.messages.Decide(messageID, domain.StatusIgnored, nil, decidedBy, time.Now())
}

func (u *reviewUsecase) ListPending(limit, offset int) ([]*domain.Message, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.messages.FindByStatus(domain.StatusPendingUser, limit, offset)
}

func (u *reviewUsecase) pending(messageID string) (*domain.Message, error) {
	msg, err := u.messages.FindByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("message not found: %s", messageID))
	}
	if msg.ProcessingStatus != domain.StatusPendingUser {
		return nil, apperr.New(apperr.CodeBadRequest, fmt.Sprintf("message %s is %s, not pending review", messageID, msg.ProcessingStatus))
	}
	return msg, nil
}
