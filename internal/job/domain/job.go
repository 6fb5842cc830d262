package domain

import "time"

// Stage values for the application pipeline.
const (
	StageApplied    = "applied"
	StageInterview  = "interview"
	StageAssessment = "assessment"
	StageOffer      = "offer"
	StageClosed     = "closed"
)

// ApplicationStatus is the coarse lifecycle state used to select candidates
// for email matching; only active applications are offered to the classifier.
type ApplicationStatus string

const (
	StatusApplied    ApplicationStatus = "applied"
	StatusInProgress ApplicationStatus = "in_progress"
	StatusProcessing ApplicationStatus = "processing"
	StatusClosed     ApplicationStatus = "closed"
)

// ActiveStatuses are the statuses eligible for auto-linking.
func ActiveStatuses() []ApplicationStatus {
	return []ApplicationStatus{StatusApplied, StatusInProgress, StatusProcessing}
}

// JobApplication is one tracked application.
type JobApplication struct {
	ID        string            `json:"id" gorm:"primaryKey"`
	Employer  string            `json:"employer" gorm:"not null"`
	Title     string            `json:"title" gorm:"not null"`
	Stage     string            `json:"stage" gorm:"default:applied"`
	Status    ApplicationStatus `json:"status" gorm:"index;default:applied"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// StageEvent is an append-only timeline entry on an application.
type StageEvent struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	JobID      string    `json:"job_id" gorm:"index;not null"`
	FromStage  string    `json:"from_stage"`
	ToStage    string    `json:"to_stage" gorm:"not null"`
	OccurredAt int64     `json:"occurred_at"` // unix seconds
	Actor      string    `json:"actor" gorm:"default:system"`
	Label      string    `json:"label,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Metadata   string    `json:"metadata,omitempty" gorm:"type:text"` // JSON blob
	CreatedAt  time.Time `json:"created_at"`
}
