package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"hotel-review-ops/models"
)

const defaultAxiomBaseURL = "https://api.axiom.ai/v1"

// axiomHTTPClient is package level so tests can intercept it.
var axiomHTTPClient = &http.Client{Timeout: 30 * time.Second}

type TriggerResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func axiomBaseURL() string {
	if url := os.Getenv("AXIOM_API_BASE_URL"); url != "" {
		return url
	}
	return defaultAxiomBaseURL
}

// TriggerBot fires an Axiom bot run. Transport errors and non-2xx responses
// are normalized into a failed TriggerResult, never returned as Go errors.
func TriggerBot(botID string, payload map[string]string) TriggerResult {
	token := os.Getenv("AXIOM_API_TOKEN")
	if token == "" {
		return TriggerResult{Success: false, Error: "AXIOM_API_TOKEN is not configured"}
	}

	body := map[string]interface{}{"bot_id": botID}
	for key, value := range payload {
		body[key] = value
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return TriggerResult{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequest("POST", axiomBaseURL()+"/trigger", bytes.NewBuffer(jsonData))
	if err != nil {
		return TriggerResult{Success: false, Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := axiomHTTPClient.Do(req)
	if err != nil {
		return TriggerResult{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TriggerResult{
			Success: false,
			Error:   fmt.Sprintf("axiom api returned %d: %s", resp.StatusCode, truncate(string(respBody), 200)),
		}
	}

	return TriggerResult{Success: true}
}

// TriggerAutomation runs the configured automation for slug and records the
// outcome on the integration row. It is shared by the scheduled and the
// manual path; neither touches the other's timer state.
func TriggerAutomation(db *gorm.DB, slug string, triggeredBy string) TriggerResult {
	integration, config, err := GetAutomationConfig(db, slug)
	if err != nil {
		return TriggerResult{Success: false, Error: err.Error()}
	}
	if integration == nil || config == nil {
		return TriggerResult{Success: false, Error: "automation is not configured"}
	}

	if config.BotID == "" {
		result := TriggerResult{Success: false, Error: "axiom bot id is missing"}
		recordTriggerOutcome(db, slug, result)
		return result
	}

	apiKey := config.RowsAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ROWS_API_KEY")
	}
	if apiKey == "" {
		result := TriggerResult{Success: false, Error: "rows api key is missing"}
		recordTriggerOutcome(db, slug, result)
		return result
	}

	payload := buildTriggerPayload(config, apiKey, integration.LastSyncAt, triggeredBy)
	result := TriggerBot(config.BotID, payload)
	recordTriggerOutcome(db, slug, result)
	return result
}

// buildTriggerPayload assembles the bot parameters, omitting empty fields.
func buildTriggerPayload(config *AutomationConfig, apiKey string, lastSync *time.Time, triggeredBy string) map[string]string {
	payload := map[string]string{
		"rowsApiKey":        apiKey,
		"rowsSpreadsheetId": config.RowsSpreadsheetID,
		"rowsTableId":       config.RowsTableID,
		"tawkPropertyId":    config.TawkPropertyID,
		"triggeredBy":       triggeredBy,
	}
	if lastSync != nil {
		payload["since"] = lastSync.UTC().Format(time.RFC3339)
	}
	for key, value := range payload {
		if value == "" {
			delete(payload, key)
		}
	}
	return payload
}

func recordTriggerOutcome(db *gorm.DB, slug string, result TriggerResult) {
	now := time.Now()
	var updates map[string]interface{}
	if result.Success {
		updates = map[string]interface{}{
			"status":        models.IntegrationStatusActive,
			"last_sync_at":  now,
			"error_message": "",
			"updated_at":    now,
		}
	} else {
		updates = map[string]interface{}{
			"status":        models.IntegrationStatusError,
			"error_message": result.Error,
			"updated_at":    now,
		}
	}

	if err := db.Model(&models.Integration{}).Where("slug = ?", slug).Updates(updates).Error; err != nil {
		log.Printf("trigger outcome update failed (slug: %s): %v", slug, err)
	}
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
