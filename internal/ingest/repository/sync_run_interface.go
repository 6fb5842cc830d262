package repository

import "jobtrack-backend/internal/ingest/domain"

type SyncRunRepository interface {
	Create(run *domain.SyncRun) error
	FindByID(id string) (*domain.SyncRun, error)
	FindByIntegration(integrationID string, limit int) ([]*domain.SyncRun, error)
	FinalizeCompleted(id string, counters domain.SyncCounters) error
	FinalizeFailed(id string, counters domain.SyncCounters, errorCode, errorMessage string) error
}
