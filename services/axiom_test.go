package services

import (
	"encoding/json"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-review-ops/models"
)

func interceptAxiomClient(t *testing.T) {
	gock.InterceptClient(axiomHTTPClient)
	t.Cleanup(func() {
		gock.Off()
		gock.RestoreClient(axiomHTTPClient)
	})
}

func TestTriggerBotSuccess(t *testing.T) {
	t.Setenv("AXIOM_API_TOKEN", "test-token")
	interceptAxiomClient(t)

	gock.New("https://api.axiom.ai").
		Post("/v1/trigger").
		MatchHeader("Authorization", "Bearer test-token").
		MatchHeader("Content-Type", "application/json").
		JSON(map[string]interface{}{
			"bot_id":      "bot-123",
			"triggeredBy": "manual",
		}).
		Reply(200).
		JSON(map[string]interface{}{"ok": true})

	result := TriggerBot("bot-123", map[string]string{"triggeredBy": "manual"})

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.True(t, gock.IsDone())
}

func TestTriggerBotAPIError(t *testing.T) {
	t.Setenv("AXIOM_API_TOKEN", "test-token")
	interceptAxiomClient(t)

	gock.New("https://api.axiom.ai").
		Post("/v1/trigger").
		Reply(500).
		BodyString("internal error")

	result := TriggerBot("bot-123", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "500")
}

func TestTriggerBotMissingToken(t *testing.T) {
	t.Setenv("AXIOM_API_TOKEN", "")

	result := TriggerBot("bot-123", nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "AXIOM_API_TOKEN")
}

func TestTriggerAutomationRecordsSuccess(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("AXIOM_API_TOKEN", "test-token")
	interceptAxiomClient(t)

	require.NoError(t, SaveAutomationConfig(db, TawktoRowsSlug, testSaveParams()))

	gock.New("https://api.axiom.ai").
		Post("/v1/trigger").
		Reply(200).
		JSON(map[string]interface{}{"ok": true})

	result := TriggerAutomation(db, TawktoRowsSlug, "manual")
	require.True(t, result.Success)

	integration, _, err := GetAutomationConfig(db, TawktoRowsSlug)
	require.NoError(t, err)
	assert.Equal(t, models.IntegrationStatusActive, integration.Status)
	assert.Empty(t, integration.ErrorMessage)
	require.NotNil(t, integration.LastSyncAt)
	assert.WithinDuration(t, time.Now(), *integration.LastSyncAt, 5*time.Second)
}

func TestTriggerAutomationRecordsFailure(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("AXIOM_API_TOKEN", "test-token")
	interceptAxiomClient(t)

	require.NoError(t, SaveAutomationConfig(db, TawktoRowsSlug, testSaveParams()))

	gock.New("https://api.axiom.ai").
		Post("/v1/trigger").
		Reply(503).
		BodyString("unavailable")

	result := TriggerAutomation(db, TawktoRowsSlug, "schedule")
	require.False(t, result.Success)

	integration, _, err := GetAutomationConfig(db, TawktoRowsSlug)
	require.NoError(t, err)
	assert.Equal(t, models.IntegrationStatusError, integration.Status)
	assert.Contains(t, integration.ErrorMessage, "503")
	assert.Nil(t, integration.LastSyncAt)
}

func TestTriggerAutomationNotConfigured(t *testing.T) {
	db := setupTestDB(t)

	result := TriggerAutomation(db, TawktoRowsSlug, "manual")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	// cyrillic is two bytes per rune; a cut landing mid-rune must back up
	// to the previous boundary instead of storing invalid UTF-8
	cut := truncate("Отличный отель", 7)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, "Отл...", cut)

	georgian := truncate("საუკეთესო სასტუმრო", 10)
	assert.True(t, utf8.ValidString(georgian))
}

func TestTriggerAutomationMissingAPIKeyMarksError(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("AXIOM_API_TOKEN", "test-token")
	t.Setenv("ROWS_API_KEY", "")

	// store a config whose key was wiped by hand to simulate a bad state
	params := testSaveParams()
	require.NoError(t, SaveAutomationConfig(db, TawktoRowsSlug, params))

	_, config, err := GetAutomationConfig(db, TawktoRowsSlug)
	require.NoError(t, err)
	config.RowsAPIKey = ""
	plaintext, err := json.Marshal(config)
	require.NoError(t, err)
	encrypted, err := EncryptConfig(plaintext)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Integration{}).
		Where("slug = ?", TawktoRowsSlug).
		Update("config", encrypted).Error)

	result := TriggerAutomation(db, TawktoRowsSlug, "manual")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "api key")

	integration, _, err := GetAutomationConfig(db, TawktoRowsSlug)
	require.NoError(t, err)
	assert.Equal(t, models.IntegrationStatusError, integration.Status)
}
