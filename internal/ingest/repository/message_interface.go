package repository

import (
	"time"

	"jobtrack-backend/internal/ingest/domain"
)

// UpsertResult reports what the idempotent upsert actually did. Callers gate
// side effects on AutoLinkTransitioned, never on re-comparing statuses.
type UpsertResult struct {
	Message    *domain.Message
	WasCreated bool
	// PreviousStatus is zero-valued on insert.
	PreviousStatus domain.ProcessingStatus
	// AutoLinkTransitioned is true only on the first transition into
	// auto_linked for this message, across all syncs ever.
	AutoLinkTransitioned bool
}

// MessageRepository persists ingested messages keyed by their natural
// (provider, accountKey, externalMessageID) identity.
type MessageRepository interface {
	// Upsert inserts or updates by natural key, preserving human decisions.
	Upsert(msg *domain.Message) (*UpsertResult, error)

	FindByID(id string) (*domain.Message, error)
	FindByExternalID(provider, accountKey, externalMessageID string) (*domain.Message, error)
	FindByStatus(status domain.ProcessingStatus, limit, offset int) ([]*domain.Message, int64, error)

	// Decide records a manual review outcome.
	Decide(id string, status domain.ProcessingStatus, matchedJobID *string, decidedBy string, decidedAt time.Time) (*domain.Message, error)
}
