package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotel-review-ops/models"
)

func createTestReview(t *testing.T, db *gorm.DB, rating int) models.Review {
	review := models.Review{
		ReviewerName: "Ana",
		Source:       "google",
		Rating:       rating,
		Content:      "Dirty room",
		Sentiment:    models.SentimentNegative,
		Language:     "en",
		ReviewDate:   time.Now(),
	}
	require.NoError(t, db.Create(&review).Error)
	return review
}

func TestCreateReviewResponseTask(t *testing.T) {
	db := setupTestDB(t)
	review := createTestReview(t, db, 1)

	task, err := CreateReviewResponseTask(db, review, "We are sorry.")
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.TaskTypeReviewResponse, task.TaskType)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, models.TaskPriorityUrgent, task.Priority)
	assert.Contains(t, task.AISuggestion, "We are sorry.")
}

func TestTaskPriorityForRating(t *testing.T) {
	assert.Equal(t, models.TaskPriorityUrgent, taskPriorityForRating(1))
	assert.Equal(t, models.TaskPriorityUrgent, taskPriorityForRating(2))
	assert.Equal(t, models.TaskPriorityHigh, taskPriorityForRating(3))
	assert.Equal(t, models.TaskPriorityMedium, taskPriorityForRating(4))
	assert.Equal(t, models.TaskPriorityLow, taskPriorityForRating(5))
}

func TestApproveTaskPublishesReply(t *testing.T) {
	db := setupTestDB(t)
	review := createTestReview(t, db, 1)

	task, err := CreateReviewResponseTask(db, review, "We are sorry.")
	require.NoError(t, err)

	approved, err := ApproveTask(db, task.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, approved.Status)

	var updated models.Review
	require.NoError(t, db.First(&updated, review.ID).Error)
	assert.True(t, updated.HasReply)
	assert.Equal(t, "We are sorry.", updated.ReplyContent)
	require.NotNil(t, updated.ReplyDate)
}

func TestApproveTaskWithModifiedContent(t *testing.T) {
	db := setupTestDB(t)
	review := createTestReview(t, db, 2)

	task, err := CreateReviewResponseTask(db, review, "Draft reply.")
	require.NoError(t, err)

	_, err = ApproveTask(db, task.ID, "Edited by a human.")
	require.NoError(t, err)

	var updated models.Review
	require.NoError(t, db.First(&updated, review.ID).Error)
	assert.Equal(t, "Edited by a human.", updated.ReplyContent)
}

func TestRejectTask(t *testing.T) {
	db := setupTestDB(t)
	review := createTestReview(t, db, 1)

	task, err := CreateReviewResponseTask(db, review, "Draft reply.")
	require.NoError(t, err)

	rejected, err := RejectTask(db, task.ID, "off brand tone")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusRejected, rejected.Status)
	assert.Equal(t, "off brand tone", rejected.RejectionReason)

	// no side effect on the review
	var updated models.Review
	require.NoError(t, db.First(&updated, review.ID).Error)
	assert.False(t, updated.HasReply)
}

func TestTaskTransitionsAreMonotonic(t *testing.T) {
	db := setupTestDB(t)
	review := createTestReview(t, db, 1)

	task, err := CreateReviewResponseTask(db, review, "Draft reply.")
	require.NoError(t, err)

	// approve then reject: the second call must fail, status stays completed
	_, err = ApproveTask(db, task.ID, "")
	require.NoError(t, err)

	_, err = RejectTask(db, task.ID, "too late")
	assert.ErrorIs(t, err, ErrTaskNotPending)

	var stored models.ApprovalTask
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.Equal(t, models.TaskStatusCompleted, stored.Status)

	// and the other way around on a fresh task
	other := createTestReviewNamed(t, db, "Boris")
	task2, err := CreateReviewResponseTask(db, other, "Draft reply.")
	require.NoError(t, err)

	_, err = RejectTask(db, task2.ID, "not needed")
	require.NoError(t, err)

	_, err = ApproveTask(db, task2.ID, "")
	assert.ErrorIs(t, err, ErrTaskNotPending)

	stored = models.ApprovalTask{}
	require.NoError(t, db.First(&stored, "id = ?", task2.ID).Error)
	assert.Equal(t, models.TaskStatusRejected, stored.Status)
}

func createTestReviewNamed(t *testing.T, db *gorm.DB, name string) models.Review {
	review := models.Review{
		ReviewerName: name,
		Source:       "google",
		Rating:       3,
		Content:      "Average stay",
		Sentiment:    models.SentimentNeutral,
		Language:     "en",
		ReviewDate:   time.Now(),
	}
	require.NoError(t, db.Create(&review).Error)
	return review
}

func TestApproveUnknownTask(t *testing.T) {
	db := setupTestDB(t)

	_, err := ApproveTask(db, "no-such-id", "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListPendingTasks(t *testing.T) {
	db := setupTestDB(t)

	first := createTestReviewNamed(t, db, "First")
	second := createTestReviewNamed(t, db, "Second")

	t1, err := CreateReviewResponseTask(db, first, "Draft one.")
	require.NoError(t, err)
	_, err = CreateReviewResponseTask(db, second, "Draft two.")
	require.NoError(t, err)

	tasks, err := ListPendingTasks(db)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = ApproveTask(db, t1.ID, "")
	require.NoError(t, err)

	tasks, err = ListPendingTasks(db)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
