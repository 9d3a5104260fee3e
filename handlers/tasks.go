package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotel-review-ops/services"
)

// HandleListPendingTasks returns the approval queue, oldest first.
func HandleListPendingTasks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := services.ListPendingTasks(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
	}
}

type approveTaskRequest struct {
	ModifiedContent string `json:"modifiedContent"`
}

// HandleApproveTask executes the drafted action (optionally with an operator
// override) and completes the task. Approving a non-pending task is a
// conflict, not a silent no-op.
func HandleApproveTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req approveTaskRequest
		// an empty body means approving the suggestion as is
		_ = c.ShouldBindJSON(&req)

		task, err := services.ApproveTask(db, c.Param("id"), req.ModifiedContent)
		if err != nil {
			respondTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
	}
}

type rejectTaskRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func HandleRejectTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req rejectTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
			return
		}

		task, err := services.RejectTask(db, c.Param("id"), req.Reason)
		if err != nil {
			respondTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
	}
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, services.ErrTaskNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": "task is not pending"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
