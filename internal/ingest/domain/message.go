package domain

import "time"

// Relevance is the coarse relevance decision for a candidate email.
type Relevance string

const (
	RelevanceRelevant    Relevance = "relevant"
	RelevanceNotRelevant Relevance = "not_relevant"
	RelevanceNeedsLLM    Relevance = "needs_llm"
)

// StageTarget is the application-pipeline stage a message's content implies.
type StageTarget string

const (
	StageTargetApplied    StageTarget = "applied"
	StageTargetInterview  StageTarget = "interview"
	StageTargetAssessment StageTarget = "assessment"
	StageTargetOffer      StageTarget = "offer"
	StageTargetRejected   StageTarget = "rejected"
	StageTargetWithdrawn  StageTarget = "withdrawn"
	StageTargetNoChange   StageTarget = "no_change"
)

// ParseStageTarget validates a classifier-returned stage target, defaulting
// unrecognized values to no_change rather than trusting the model.
func ParseStageTarget(s string) StageTarget {
	switch StageTarget(s) {
	case StageTargetApplied, StageTargetInterview, StageTargetAssessment,
		StageTargetOffer, StageTargetRejected, StageTargetWithdrawn, StageTargetNoChange:
		return StageTarget(s)
	default:
		return StageTargetNoChange
	}
}

// ProcessingStatus is the message's human-review lifecycle state.
type ProcessingStatus string

const (
	StatusAutoLinked   ProcessingStatus = "auto_linked"
	StatusPendingUser  ProcessingStatus = "pending_user"
	StatusManualLinked ProcessingStatus = "manual_linked"
	StatusIgnored      ProcessingStatus = "ignored"
)

// Message is one ingested email. (Provider, AccountKey, ExternalMessageID)
// is the idempotency key: re-syncing the same mailbox window updates the
// existing row instead of creating a duplicate.
type Message struct {
	ID                string `json:"id" gorm:"primaryKey"`
	Provider          string `json:"provider" gorm:"uniqueIndex:idx_message_identity;not null"`
	AccountKey        string `json:"account_key" gorm:"uniqueIndex:idx_message_identity;not null"`
	ExternalMessageID string `json:"external_message_id" gorm:"uniqueIndex:idx_message_identity;not null"`
	ThreadID          string `json:"thread_id,omitempty"`

	FromAddress string    `json:"from_address"`
	FromDomain  string    `json:"from_domain" gorm:"index"`
	SenderName  string    `json:"sender_name,omitempty"`
	Subject     string    `json:"subject"`
	ReceivedAt  time.Time `json:"received_at"`
	Snippet     string    `json:"snippet,omitempty"`

	// Classification outputs.
	Label             string      `json:"label,omitempty"`
	Confidence        int         `json:"confidence"`
	RawClassification string      `json:"-" gorm:"type:text"`
	Relevance         Relevance   `json:"relevance" gorm:"default:needs_llm"`
	StageTarget       StageTarget `json:"stage_target" gorm:"default:no_change"`
	MessageType       string      `json:"message_type,omitempty"`

	ProcessingStatus ProcessingStatus `json:"processing_status" gorm:"index;not null"`
	// MatchedJobID is a weak reference to an application that was active at
	// classification time; only set for auto_linked / pending_user outcomes.
	MatchedJobID *string `json:"matched_job_id,omitempty" gorm:"index"`

	// Manual review decision; set by a human, never by the pipeline.
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy string     `json:"decided_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HumanDecided reports whether a human already settled this message's state.
// The pipeline must never flip such a message back to auto_linked/pending_user.
func (m *Message) HumanDecided() bool {
	return m.ProcessingStatus == StatusManualLinked ||
		(m.ProcessingStatus == StatusIgnored && m.DecidedBy != "")
}
