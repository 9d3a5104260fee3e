package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotel-review-ops/services"
)

// HandleReviewWebhook ingests externally sourced review payloads. Business
// rejection (whitelist, duplicates) is reported inside a 200 response; only
// transport and parse failures use error status codes.
func HandleReviewWebhook(db *gorm.DB, drafter *services.Drafter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "cannot read body"})
			return
		}

		taskName := c.Query("task")
		if taskName == "" {
			taskName = c.GetHeader("X-Task-Name")
		}

		result, err := services.IngestReviewPayload(c.Request.Context(), db, drafter, body, taskName)
		if err != nil {
			log.Printf("webhook payload parse error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "invalid payload"})
			return
		}

		if result.Rejected {
			c.JSON(http.StatusOK, gin.H{
				"success":  true,
				"imported": 0,
				"rejected": true,
				"reason":   result.Reason,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"imported": result.Imported,
			"skipped":  result.Skipped,
			"total":    result.Total,
		})
	}
}
