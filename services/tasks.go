package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotel-review-ops/models"
)

// ErrTaskNotPending is returned when approve or reject is applied to a task
// that already left the pending state. Terminal states are terminal.
var ErrTaskNotPending = errors.New("task is not pending")

// ReviewReplySuggestion is the opaque payload stored on a task: the drafted
// reply plus enough routing info to execute the side effect on approval.
type ReviewReplySuggestion struct {
	Reply    string `json:"reply"`
	ReviewID uint   `json:"reviewId"`
	Language string `json:"language"`
}

// CreateReviewResponseTask records a pending approval task for a drafted
// reply. The ingestion path never touches the task again after creation.
func CreateReviewResponseTask(db *gorm.DB, review models.Review, draft string) (*models.ApprovalTask, error) {
	suggestion, err := json.Marshal(ReviewReplySuggestion{
		Reply:    draft,
		ReviewID: review.ID,
		Language: review.Language,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := models.ApprovalTask{
		ID:           uuid.NewString(),
		TaskType:     models.TaskTypeReviewResponse,
		Priority:     taskPriorityForRating(review.Rating),
		Status:       models.TaskStatusPending,
		Title:        fmt.Sprintf("Reply to %d-star review from %s", review.Rating, review.ReviewerName),
		Description:  truncate(review.Content, 200),
		AISuggestion: string(suggestion),
		Context:      review.Source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func taskPriorityForRating(rating int) string {
	switch {
	case rating <= 2:
		return models.TaskPriorityUrgent
	case rating == 3:
		return models.TaskPriorityHigh
	case rating == 4:
		return models.TaskPriorityMedium
	default:
		return models.TaskPriorityLow
	}
}

// ApproveTask executes the approved action and completes the task. The
// effective reply is the operator's override when given, otherwise the
// stored suggestion. Approval is the only path by which a draft becomes a
// live side effect.
func ApproveTask(db *gorm.DB, taskID string, modifiedContent string) (*models.ApprovalTask, error) {
	var task models.ApprovalTask
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusPending {
		return nil, ErrTaskNotPending
	}

	var suggestion ReviewReplySuggestion
	if err := json.Unmarshal([]byte(task.AISuggestion), &suggestion); err != nil {
		return nil, fmt.Errorf("task %s has a malformed suggestion payload: %w", task.ID, err)
	}

	reply := suggestion.Reply
	if strings.TrimSpace(modifiedContent) != "" {
		reply = modifiedContent
	}

	task.Status = models.TaskStatusApproved
	task.UpdatedAt = time.Now()
	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	if err := db.Model(&models.Review{}).Where("id = ?", suggestion.ReviewID).Updates(map[string]interface{}{
		"has_reply":     true,
		"reply_content": reply,
		"reply_date":    now,
		"updated_at":    now,
	}).Error; err != nil {
		return nil, err
	}

	task.Status = models.TaskStatusCompleted
	task.UpdatedAt = time.Now()
	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// RejectTask records the reason and moves the task to its terminal rejected
// state. No side effect is executed.
func RejectTask(db *gorm.DB, taskID string, reason string) (*models.ApprovalTask, error) {
	var task models.ApprovalTask
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusPending {
		return nil, ErrTaskNotPending
	}

	task.Status = models.TaskStatusRejected
	task.RejectionReason = reason
	task.UpdatedAt = time.Now()
	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListPendingTasks returns pending tasks, oldest first.
func ListPendingTasks(db *gorm.DB) ([]models.ApprovalTask, error) {
	var tasks []models.ApprovalTask
	err := db.Where("status = ?", models.TaskStatusPending).
		Order("created_at asc").Find(&tasks).Error
	return tasks, err
}
