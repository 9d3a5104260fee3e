package models

import "time"

const (
	TaskStatusPending   = "pending"
	TaskStatusApproved  = "approved"
	TaskStatusRejected  = "rejected"
	TaskStatusCompleted = "completed"
)

const (
	TaskPriorityUrgent = "urgent"
	TaskPriorityHigh   = "high"
	TaskPriorityMedium = "medium"
	TaskPriorityLow    = "low"
)

const TaskTypeReviewResponse = "review_response"

// ApprovalTask pairs an AI-drafted action with explicit human approve/reject
// gating. Lifecycle: pending → approved → completed, or pending → rejected.
// Rejected and completed are terminal; nothing ever re-enters pending.
type ApprovalTask struct {
	ID              string `gorm:"primaryKey"`
	TaskType        string
	Priority        string
	Status          string
	Title           string
	Description     string
	AISuggestion    string // JSON: {reply, reviewId, language}
	Context         string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
