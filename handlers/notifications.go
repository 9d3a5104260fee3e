package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotel-review-ops/models"
)

// HandleListNotifications returns notifications, newest first. Pass
// ?unread=true to filter to unread ones.
func HandleListNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Notification{}).Order("created_at desc")
		if c.Query("unread") == "true" {
			query = query.Where("is_read = ?", false)
		}

		var notifications []models.Notification
		if err := query.Limit(100).Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": len(notifications)})
	}
}

func HandleMarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Model(&models.Notification{}).
			Where("id = ?", c.Param("id")).
			Update("is_read", true)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
