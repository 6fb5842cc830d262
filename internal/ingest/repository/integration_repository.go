package repository

import (
	"errors"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type integrationRepository struct {
	db *gorm.DB
}

func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) FindByID(id string) (*domain.Integration, error) {
	var integration domain.Integration
	err := r.db.Where("id = ?", id).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) FindByAccount(provider, accountKey string) (*domain.Integration, error) {
	var integration domain.Integration
	err := r.db.Where("provider = ? AND account_key = ?", provider, accountKey).First(&integration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &integration, nil
}

func (r *integrationRepository) FindAllConnected() ([]*domain.Integration, error) {
	var integrations []*domain.Integration
	err := r.db.Where("status = ?", domain.IntegrationConnected).Find(&integrations).Error
	return integrations, err
}

func (r *integrationRepository) Upsert(integration *domain.Integration) (*domain.Integration, error) {
	existing, err := r.FindByAccount(integration.Provider, integration.AccountKey)
	if err != nil {
		return nil, apperr.Persistence(err, "integration lookup failed")
	}

	now := time.Now()
	if existing == nil {
		integration.ID = uuid.New().String()
		integration.CreatedAt = now
		integration.UpdatedAt = now
		if createErr := r.db.Create(integration).Error; createErr != nil {
			return nil, apperr.Persistence(createErr, "integration insert failed")
		}
		return integration, nil
	}

	existing.Credentials = integration.Credentials
	existing.Status = domain.IntegrationConnected
	existing.LastError = ""
	existing.UpdatedAt = now
	if saveErr := r.db.Save(existing).Error; saveErr != nil {
		return nil, apperr.Persistence(saveErr, "integration update failed")
	}
	return existing, nil
}

func (r *integrationRepository) UpdateCredentials(id string, encryptedCredentials string) error {
	err := r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"credentials": encryptedCredentials,
		"updated_at":  time.Now(),
	}).Error
	if err != nil {
		return apperr.Persistence(err, "credential update failed")
	}
	return nil
}

func (r *integrationRepository) MarkSynced(id string) error {
	now := time.Now()
	return r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         domain.IntegrationConnected,
		"last_synced_at": &now,
		"last_error":     "",
		"updated_at":     now,
	}).Error
}

func (r *integrationRepository) MarkError(id string, message string) error {
	return r.db.Model(&domain.Integration{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     domain.IntegrationError,
		"last_error": message,
		"updated_at": time.Now(),
	}).Error
}

func (r *integrationRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&domain.Integration{}).Error
}
