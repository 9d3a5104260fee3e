package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotel-review-ops/models"
	"hotel-review-ops/services"
)

type automationRequest struct {
	BotID             string            `json:"botId" binding:"required"`
	RowsSpreadsheetID string            `json:"rowsSpreadsheetId" binding:"required"`
	RowsTableID       string            `json:"rowsTableId"`
	RowsAPIKey        string            `json:"rowsApiKey"`
	TawkPropertyID    string            `json:"tawkPropertyId"`
	Schedule          services.Schedule `json:"schedule"`
	Enabled           *bool             `json:"enabled"`
}

// HandleGetAutomation returns the automation state with the API key masked.
// The decrypted secret never leaves the server.
func HandleGetAutomation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		integration, config, err := services.GetAutomationConfig(db, services.TawktoRowsSlug)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load automation"})
			return
		}

		if integration == nil {
			c.JSON(http.StatusOK, gin.H{"configured": false, "status": models.IntegrationStatusInactive})
			return
		}

		response := gin.H{
			"configured":   config != nil,
			"status":       integration.Status,
			"isEnabled":    integration.Status == models.IntegrationStatusActive,
			"errorMessage": integration.ErrorMessage,
		}
		if integration.LastSyncAt != nil {
			response["lastSync"] = integration.LastSyncAt.UTC().Format(time.RFC3339)
		}

		if config != nil {
			response["botId"] = config.BotID
			response["rowsSpreadsheetId"] = config.RowsSpreadsheetID
			response["rowsTableId"] = config.RowsTableID
			response["tawkPropertyId"] = config.TawkPropertyID
			response["schedule"] = config.Schedule
			response["rowsApiKeyMasked"] = services.MaskSecret(config.RowsAPIKey)
			response["rowsApiKeySource"] = apiKeySource(config.RowsAPIKey)
			if integration.Status == models.IntegrationStatusActive {
				response["nextRun"] = services.NextRun(config.Schedule, time.Now()).Format(time.RFC3339)
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

func apiKeySource(storedKey string) string {
	if storedKey != "" {
		return "saved"
	}
	if os.Getenv("ROWS_API_KEY") != "" {
		return "environment"
	}
	return "missing"
}

// HandleSaveAutomation persists the configuration and refreshes the
// scheduler so the new cadence takes effect immediately.
func HandleSaveAutomation(db *gorm.DB, scheduler *services.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req automationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}

		err := services.SaveAutomationConfig(db, services.TawktoRowsSlug, services.SaveAutomationParams{
			BotID:             req.BotID,
			RowsSpreadsheetID: req.RowsSpreadsheetID,
			RowsTableID:       req.RowsTableID,
			RowsAPIKey:        req.RowsAPIKey,
			TawkPropertyID:    req.TawkPropertyID,
			Schedule:          req.Schedule,
			Enabled:           enabled,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		scheduler.Refresh(services.TawktoRowsSlug)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// HandleRunAutomation triggers the bot immediately. It shares the trigger
// path with the scheduler but never touches timer state, so a manual run
// cannot race a scheduled one into duplicate timers.
func HandleRunAutomation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := services.TriggerAutomation(db, services.TawktoRowsSlug, "manual")
		c.JSON(http.StatusOK, result)
	}
}
