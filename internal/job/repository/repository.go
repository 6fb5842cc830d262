package repository

import "jobtrack-backend/internal/job/domain"

// JobRepository persists applications and their stage-event timelines.
type JobRepository interface {
	Create(job *domain.JobApplication) error
	FindByID(id string) (*domain.JobApplication, error)
	FindByStatuses(statuses []domain.ApplicationStatus) ([]*domain.JobApplication, error)
	Update(job *domain.JobApplication) error

	AppendStageEvent(event *domain.StageEvent) error
	EventsByJobID(jobID string) ([]*domain.StageEvent, error)
}
