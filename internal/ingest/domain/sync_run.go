package domain

import "time"

// SyncRunStatus is terminal once it leaves running.
type SyncRunStatus string

const (
	RunStatusRunning   SyncRunStatus = "running"
	RunStatusCompleted SyncRunStatus = "completed"
	RunStatusFailed    SyncRunStatus = "failed"
	RunStatusCancelled SyncRunStatus = "cancelled"
)

// SyncCounters are accumulated in memory during a run and written once at
// the end; the run row is not a shared-mutation target across workers.
type SyncCounters struct {
	Discovered int `json:"discovered"`
	Relevant   int `json:"relevant"`
	Classified int `json:"classified"`
	Matched    int `json:"matched"`
	Approved   int `json:"approved"`
	Denied     int `json:"denied"`
	Errored    int `json:"errored"`
}

// SyncRun is one bounded execution of the ingestion pipeline.
type SyncRun struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	IntegrationID string        `json:"integration_id" gorm:"index;not null"`
	Status        SyncRunStatus `json:"status" gorm:"default:running"`

	Discovered int `json:"discovered"`
	Relevant   int `json:"relevant"`
	Classified int `json:"classified"`
	Matched    int `json:"matched"`
	Approved   int `json:"approved"`
	Denied     int `json:"denied"`
	Errored    int `json:"errored"`

	ErrorCode    string     `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
