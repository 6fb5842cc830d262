package domain

import "time"

// IntegrationStatus is the connection state of a mailbox integration.
type IntegrationStatus string

const (
	IntegrationDisconnected IntegrationStatus = "disconnected"
	IntegrationConnected    IntegrationStatus = "connected"
	IntegrationError        IntegrationStatus = "error"
)

// Integration holds one connected mailbox per (provider, accountKey).
// The credential blob is AES-GCM encrypted JSON; see Credentials.
type Integration struct {
	ID           string            `json:"id" gorm:"primaryKey"`
	Provider     string            `json:"provider" gorm:"uniqueIndex:idx_provider_account;not null"`
	AccountKey   string            `json:"account_key" gorm:"uniqueIndex:idx_provider_account;not null"`
	Status       IntegrationStatus `json:"status" gorm:"default:disconnected"`
	Credentials  string            `json:"-" gorm:"type:text"` // encrypted, never serialized
	LastSyncedAt *time.Time        `json:"last_synced_at,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Credentials is the decrypted shape of Integration.Credentials.
type Credentials struct {
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"access_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scope        string    `json:"scope,omitempty"`
}
