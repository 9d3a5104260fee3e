package services

import (
	"fmt"
	"log"
	"os"

	"github.com/slack-go/slack"
	"gorm.io/gorm"

	"hotel-review-ops/models"
)

// EmitReviewNotification raises the internal alert for a newly ingested
// review. Very negative reviews (rating <= 2) are urgent and additionally
// forwarded to the ops Slack channel when one is configured. Failures here
// are logged and swallowed; the review is already durably stored.
func EmitReviewNotification(db *gorm.DB, review models.Review) {
	isNegative := review.Rating <= 2

	notification := models.Notification{
		Type:     models.NotificationTypeInfo,
		Priority: models.NotificationPriorityNormal,
		Title:    fmt.Sprintf("New %s review", review.Source),
		Message:  fmt.Sprintf("%s - %d★: %s", review.ReviewerName, review.Rating, truncate(review.Content, 100)),
	}
	if isNegative {
		notification.Type = models.NotificationTypeWarning
		notification.Priority = models.NotificationPriorityUrgent
		notification.Title = "Negative review received"
	}

	if err := db.Create(&notification).Error; err != nil {
		log.Printf("notification insert failed (reviewer: %s): %v", review.ReviewerName, err)
	}

	if isNegative {
		postSlackAlert(review)
	}
}

func postSlackAlert(review models.Review) {
	token := os.Getenv("SLACK_BOT_TOKEN")
	channel := os.Getenv("SLACK_ALERT_CHANNEL")
	if token == "" || channel == "" {
		return
	}

	api := slack.New(token)
	text := fmt.Sprintf("⚠️ %d-star review on %s from %s:\n> %s",
		review.Rating, review.Source, review.ReviewerName, truncate(review.Content, 300))

	_, _, err := api.PostMessage(channel, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("slack alert failed (channel: %s): %v", channel, err)
		return
	}
	log.Printf("slack alert sent (channel: %s, reviewer: %s)", channel, review.ReviewerName)
}
