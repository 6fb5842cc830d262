package repository

import (
	"errors"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Upsert(msg *domain.Message) (*UpsertResult, error) {
	var existing domain.Message
	err := r.db.Where("provider = ? AND account_key = ? AND external_message_id = ?",
		msg.Provider, msg.AccountKey, msg.ExternalMessageID).First(&existing).Error

	now := time.Now()

	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg.ID = uuid.New().String()
		msg.CreatedAt = now
		msg.UpdatedAt = now
		if createErr := r.db.Create(msg).Error; createErr != nil {
			// A constraint violation here means two writers raced on the same
			// natural key; surface it as a per-message persistence error.
			return nil, apperr.Persistence(createErr, "message insert failed")
		}
		return &UpsertResult{
			Message:              msg,
			WasCreated:           true,
			AutoLinkTransitioned: msg.ProcessingStatus == domain.StatusAutoLinked,
		}, nil
	}
	if err != nil {
		return nil, apperr.Persistence(err, "message lookup failed")
	}

	previous := existing.ProcessingStatus

	// Classification fields always refresh; the latest sync saw the freshest
	// model output.
	existing.ThreadID = msg.ThreadID
	existing.FromAddress = msg.FromAddress
	existing.FromDomain = msg.FromDomain
	existing.SenderName = msg.SenderName
	existing.Subject = msg.Subject
	existing.ReceivedAt = msg.ReceivedAt
	existing.Snippet = msg.Snippet
	existing.Label = msg.Label
	existing.Confidence = msg.Confidence
	existing.RawClassification = msg.RawClassification
	existing.Relevance = msg.Relevance
	existing.StageTarget = msg.StageTarget
	existing.MessageType = msg.MessageType

	// A human-settled status and its link are off limits to the pipeline.
	transitioned := false
	if !existing.HumanDecided() {
		transitioned = previous != domain.StatusAutoLinked &&
			msg.ProcessingStatus == domain.StatusAutoLinked
		existing.ProcessingStatus = msg.ProcessingStatus
		existing.MatchedJobID = msg.MatchedJobID
	}
	existing.UpdatedAt = now

	if saveErr := r.db.Save(&existing).Error; saveErr != nil {
		return nil, apperr.Persistence(saveErr, "message update failed")
	}

	return &UpsertResult{
		Message:              &existing,
		WasCreated:           false,
		PreviousStatus:       previous,
		AutoLinkTransitioned: transitioned,
	}, nil
}

func (r *messageRepository) FindByID(id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindByExternalID(provider, accountKey, externalMessageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("provider = ? AND account_key = ? AND external_message_id = ?",
		provider, accountKey, externalMessageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindByStatus(status domain.ProcessingStatus, limit, offset int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	query := r.db.Model(&domain.Message{}).Where("processing_status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("received_at DESC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, total, err
}

func (r *messageRepository) Decide(id string, status domain.ProcessingStatus, matchedJobID *string, decidedBy string, decidedAt time.Time) (*domain.Message, error) {
	msg, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	msg.ProcessingStatus = status
	msg.MatchedJobID = matchedJobID
	msg.DecidedAt = &decidedAt
	msg.DecidedBy = decidedBy
	msg.UpdatedAt = time.Now()

	if err := r.db.Save(msg).Error; err != nil {
		return nil, apperr.Persistence(err, "message decision failed")
	}
	return msg, nil
}
