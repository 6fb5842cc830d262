package repository

import "jobtrack-backend/internal/ingest/domain"

type IntegrationRepository interface {
	FindByID(id string) (*domain.Integration, error)
	FindByAccount(provider, accountKey string) (*domain.Integration, error)
	FindAllConnected() ([]*domain.Integration, error)
	Upsert(integration *domain.Integration) (*domain.Integration, error)
	UpdateCredentials(id string, encryptedCredentials string) error
	MarkSynced(id string) error
	MarkError(id string, message string) error
	Delete(id string) error
}
