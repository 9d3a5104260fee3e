package models

import "time"

const (
	NotificationTypeInfo    = "info"
	NotificationTypeWarning = "warning"
)

const (
	NotificationPriorityNormal = "normal"
	NotificationPriorityUrgent = "urgent"
)

// Notification is a fire-and-forget internal alert with its own read/unread
// lifecycle, independent of the record that produced it.
type Notification struct {
	ID        uint `gorm:"primaryKey"`
	Type      string
	Priority  string
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
