package usecase

import (
	"encoding/json"
	"fmt"
	"log"

	"jobtrack-backend/internal/job/domain"
	"jobtrack-backend/internal/job/repository"
)

// JobUsecase is the active-jobs and stage-transition collaborator used by
// the ingestion pipeline, plus the minimal CRUD the operator API exposes.
type JobUsecase interface {
	CreateApplication(job *domain.JobApplication) error
	ListApplications() ([]*domain.JobApplication, error)
	GetActiveApplications(statuses []domain.ApplicationStatus) ([]*domain.JobApplication, error)
	GetTimeline(jobID string) ([]*domain.StageEvent, error)

	// TransitionStage appends one stage event and moves the application to
	// toStage. A closed toStage also closes the application status.
	TransitionStage(jobID, toStage string, occurredAtSeconds int64, metadata map[string]interface{}, outcome string) error
}

type jobUsecase struct {
	jobRepo repository.JobRepository
}

func NewJobUsecase(jobRepo repository.JobRepository) JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

func (u *jobUsecase) CreateApplication(job *domain.JobApplication) error {
	if job.Employer == "" || job.Title == "" {
		return fmt.Errorf("employer and title are required")
	}
	if job.Stage == "" {
		job.Stage = domain.StageApplied
	}
	if job.Status == "" {
		job.Status = domain.StatusApplied
	}
	return u.jobRepo.Create(job)
}

func (u *jobUsecase) ListApplications() ([]*domain.JobApplication, error) {
	return u.jobRepo.FindByStatuses([]domain.ApplicationStatus{
		domain.StatusApplied, domain.StatusInProgress, domain.StatusProcessing, domain.StatusClosed,
	})
}

func (u *jobUsecase) GetActiveApplications(statuses []domain.ApplicationStatus) ([]*domain.JobApplication, error) {
	if len(statuses) == 0 {
		statuses = domain.ActiveStatuses()
	}
	return u.jobRepo.FindByStatuses(statuses)
}

func (u *jobUsecase) GetTimeline(jobID string) ([]*domain.StageEvent, error) {
	return u.jobRepo.EventsByJobID(jobID)
}

func (u *jobUsecase) TransitionStage(jobID, toStage string, occurredAtSeconds int64, metadata map[string]interface{}, outcome string) error {
	job, err := u.jobRepo.FindByID(jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("application not found: %s", jobID)
	}

	actor := "system"
	label := ""
	if metadata != nil {
		if a, ok := metadata["actor"].(string); ok && a != "" {
			actor = a
		}
		if l, ok := metadata["label"].(string); ok {
			label = l
		}
	}

	var metaJSON string
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
		metaJSON = string(raw)
	}

	event := &domain.StageEvent{
		JobID:      jobID,
		FromStage:  job.Stage,
		ToStage:    toStage,
		OccurredAt: occurredAtSeconds,
		Actor:      actor,
		Label:      label,
		Outcome:    outcome,
		Metadata:   metaJSON,
	}
	if err := u.jobRepo.AppendStageEvent(event); err != nil {
		return err
	}

	job.Stage = toStage
	if toStage == domain.StageClosed {
		job.Status = domain.StatusClosed
	}
	if err := u.jobRepo.Update(job); err != nil {
		return err
	}

	log.Printf("[Jobs] %s: %s -> %s (actor=%s outcome=%s)", jobID, event.FromStage, toStage, actor, outcome)
	return nil
}
