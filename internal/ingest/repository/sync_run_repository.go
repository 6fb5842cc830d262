package repository

import (
	"errors"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type syncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) Create(run *domain.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = domain.RunStatusRunning
	if err := r.db.Create(run).Error; err != nil {
		return apperr.Persistence(err, "sync run insert failed")
	}
	return nil
}

func (r *syncRunRepository) FindByID(id string) (*domain.SyncRun, error) {
	var run domain.SyncRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepository) FindByIntegration(integrationID string, limit int) ([]*domain.SyncRun, error) {
	var runs []*domain.SyncRun
	err := r.db.Where("integration_id = ?", integrationID).
		Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *syncRunRepository) FinalizeCompleted(id string, counters domain.SyncCounters) error {
	return r.finalize(id, domain.RunStatusCompleted, counters, "", "")
}

func (r *syncRunRepository) FinalizeFailed(id string, counters domain.SyncCounters, errorCode, errorMessage string) error {
	return r.finalize(id, domain.RunStatusFailed, counters, errorCode, errorMessage)
}

func (r *syncRunRepository) finalize(id string, status domain.SyncRunStatus, counters domain.SyncCounters, errorCode, errorMessage string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        status,
		"discovered":    counters.Discovered,
		"relevant":      counters.Relevant,
		"classified":    counters.Classified,
		"matched":       counters.Matched,
		"approved":      counters.Approved,
		"denied":        counters.Denied,
		"errored":       counters.Errored,
		"error_code":    errorCode,
		"error_message": errorMessage,
		"finished_at":   &now,
	}
	err := r.db.Model(&domain.SyncRun{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return apperr.Persistence(err, "sync run finalize failed")
	}
	return nil
}
