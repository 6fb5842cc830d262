package repository

import (
	"time"

	"jobtrack-backend/internal/job/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormJobRepository implements JobRepository using GORM
type gormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GORM-based JobRepository
func NewGormJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) Create(job *domain.JobApplication) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	return r.db.Create(job).Error
}

func (r *gormJobRepository) FindByID(id string) (*domain.JobApplication, error) {
	var job domain.JobApplication
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *gormJobRepository) FindByStatuses(statuses []domain.ApplicationStatus) ([]*domain.JobApplication, error) {
	var jobs []*domain.JobApplication
	err := r.db.Where("status IN ?", statuses).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *gormJobRepository) Update(job *domain.JobApplication) error {
	job.UpdatedAt = time.Now()
	return r.db.Save(job).Error
}

func (r *gormJobRepository) AppendStageEvent(event *domain.StageEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	return r.db.Create(event).Error
}

func (r *gormJobRepository) EventsByJobID(jobID string) ([]*domain.StageEvent, error) {
	var events []*domain.StageEvent
	err := r.db.Where("job_id = ?", jobID).Order("occurred_at ASC, created_at ASC").Find(&events).Error
	return events, err
}
