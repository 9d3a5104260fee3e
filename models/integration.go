package models

import "time"

const (
	IntegrationStatusActive   = "active"
	IntegrationStatusInactive = "inactive"
	IntegrationStatusError    = "error"
)

// Integration is one configured automation: an external bot with its own
// credentials and cadence. Exactly one row per slug. Config holds the
// encrypted JSON blob produced by services.EncryptConfig; the status and
// last-sync columns are owned by the trigger path, the rest by the save path.
type Integration struct {
	ID           uint   `gorm:"primaryKey"`
	Slug         string `gorm:"uniqueIndex"`
	Name         string
	Type         string // "automation"
	Config       string // encrypted JSON
	Status       string // "active", "inactive", "error"
	LastSyncAt   *time.Time
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
