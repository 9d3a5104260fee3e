package services

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-review-ops/models"
)

const (
	TawktoRowsSlug = "axiom-tawkto-rows"
	TawktoRowsName = "Axiom Tawk.to → Rows"
)

// AutomationConfig is the decrypted configuration blob stored on an
// integration row. It is only ever held decrypted inside this package and
// the trigger path; everything outward gets the masked form.
type AutomationConfig struct {
	BotID             string   `json:"botId"`
	RowsSpreadsheetID string   `json:"rowsSpreadsheetId"`
	RowsTableID       string   `json:"rowsTableId,omitempty"`
	RowsAPIKey        string   `json:"rowsApiKey,omitempty"`
	TawkPropertyID    string   `json:"tawkPropertyId,omitempty"`
	Schedule          Schedule `json:"schedule"`
}

// GetAutomationConfig loads the integration row for slug and decrypts its
// config. A missing row returns (nil, nil, nil); a row whose config cannot
// be decrypted returns the row with a nil config.
func GetAutomationConfig(db *gorm.DB, slug string) (*models.Integration, *AutomationConfig, error) {
	var integration models.Integration
	err := db.Where("slug = ?", slug).First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if integration.Config == "" {
		return &integration, nil, nil
	}

	plaintext, err := DecryptConfig(integration.Config)
	if err != nil {
		log.Printf("config decrypt failed (slug: %s): %v", slug, err)
		return &integration, nil, nil
	}

	var config AutomationConfig
	if err := json.Unmarshal(plaintext, &config); err != nil {
		log.Printf("config parse failed (slug: %s): %v", slug, err)
		return &integration, nil, nil
	}

	return &integration, &config, nil
}

type SaveAutomationParams struct {
	BotID             string
	RowsSpreadsheetID string
	RowsTableID       string
	RowsAPIKey        string
	TawkPropertyID    string
	Schedule          Schedule
	Enabled           bool
}

// SaveAutomationConfig merges params onto the previously stored config and
// persists the result encrypted. A blank API key keeps the stored one:
// re-saving the schedule or target ids must never wipe a secret. The enabled
// flag is the only way save touches status; error transitions belong to the
// trigger path.
func SaveAutomationConfig(db *gorm.DB, slug string, params SaveAutomationParams) error {
	if err := params.Schedule.Validate(); err != nil {
		return err
	}

	botID := strings.TrimSpace(params.BotID)
	if botID == "" {
		return errors.New("bot id is required")
	}
	spreadsheetID := strings.TrimSpace(params.RowsSpreadsheetID)
	if spreadsheetID == "" {
		return errors.New("rows spreadsheet id is required")
	}

	integration, existing, err := GetAutomationConfig(db, slug)
	if err != nil {
		return err
	}

	apiKey := strings.TrimSpace(params.RowsAPIKey)
	if apiKey == "" && existing != nil {
		apiKey = existing.RowsAPIKey
	}
	if apiKey == "" && os.Getenv("ROWS_API_KEY") == "" {
		return errors.New("rows api key is required")
	}

	merged := AutomationConfig{
		BotID:             botID,
		RowsSpreadsheetID: spreadsheetID,
		RowsTableID:       strings.TrimSpace(params.RowsTableID),
		RowsAPIKey:        apiKey,
		TawkPropertyID:    strings.TrimSpace(params.TawkPropertyID),
		Schedule:          params.Schedule,
	}

	plaintext, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	encrypted, err := EncryptConfig(plaintext)
	if err != nil {
		return err
	}

	status := models.IntegrationStatusInactive
	if params.Enabled {
		status = models.IntegrationStatusActive
	}

	now := time.Now()
	if integration != nil {
		return db.Model(&models.Integration{}).Where("slug = ?", slug).Updates(map[string]interface{}{
			"name":          TawktoRowsName,
			"type":          "automation",
			"config":        encrypted,
			"status":        status,
			"error_message": "",
			"updated_at":    now,
		}).Error
	}

	return db.Create(&models.Integration{
		Slug:      slug,
		Name:      TawktoRowsName,
		Type:      "automation",
		Config:    encrypted,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
