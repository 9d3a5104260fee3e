package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"hotel-review-ops/models"
)

// IngestResult is the outcome summary returned to the webhook caller.
type IngestResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
	Rejected bool   `json:"rejected,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// rawReview covers the field variants the upstream scraper emits for a
// single review.
type rawReview struct {
	AuthorTitle    string  `json:"author_title"`
	ReviewerName   string  `json:"reviewer_name"`
	ReviewRating   float64 `json:"review_rating"`
	Rating         float64 `json:"rating"`
	ReviewText     string  `json:"review_text"`
	Text           string  `json:"text"`
	ReviewLanguage string  `json:"review_language"`
	ReviewID       string  `json:"review_id"`
	Source         string  `json:"source"`
	OwnerAnswer    string  `json:"owner_answer"`
	OwnerAnswerAt  string  `json:"owner_answer_timestamp_datetime_utc"`
	DatetimeUTC    string  `json:"review_datetime_utc"`
	Timestamp      int64   `json:"review_timestamp"`
}

type reviewBatch struct {
	PlaceName string
	Reviews   []rawReview
}

// parseWebhookBatches sniffs which of the known payload shapes the body is
// in and normalizes it into place-keyed batches. Unknown shapes yield zero
// batches, not an error; only malformed JSON is an error.
func parseWebhookBatches(body []byte) ([]reviewBatch, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	// shape: bare array of reviews
	if trimmed[0] == '[' {
		var reviews []rawReview
		if err := json.Unmarshal(trimmed, &reviews); err != nil {
			return nil, err
		}
		if len(reviews) == 0 {
			return nil, nil
		}
		return []reviewBatch{{Reviews: reviews}}, nil
	}

	var envelope struct {
		Name     string `json:"name"`
		TaskName string `json:"task_name"`
		Data     []struct {
			Name        string      `json:"name"`
			Query       string      `json:"query"`
			ReviewsData []rawReview `json:"reviews_data"`
		} `json:"data"`
		ReviewsData []rawReview `json:"reviews_data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	// shape: {data: [{..., reviews_data: [...]}]}
	if len(envelope.Data) > 0 {
		var batches []reviewBatch
		for _, place := range envelope.Data {
			if len(place.ReviewsData) == 0 {
				continue
			}
			name := place.Name
			if name == "" {
				name = place.Query
			}
			batches = append(batches, reviewBatch{PlaceName: name, Reviews: place.ReviewsData})
		}
		return batches, nil
	}

	// shape: {reviews_data: [...]}
	if len(envelope.ReviewsData) > 0 {
		name := envelope.Name
		if name == "" {
			name = envelope.TaskName
		}
		return []reviewBatch{{PlaceName: name, Reviews: envelope.ReviewsData}}, nil
	}

	return nil, nil
}

// IngestReviewPayload is the single ingestion routine shared by the webhook
// and the scheduled sync: validate against the property whitelist, dedup,
// classify, persist, notify, then queue drafts for human approval. The
// returned error covers malformed JSON only; everything else degrades into
// counters.
func IngestReviewPayload(ctx context.Context, db *gorm.DB, drafter *Drafter, body []byte, taskName string) (IngestResult, error) {
	batches, err := parseWebhookBatches(body)
	if err != nil {
		return IngestResult{}, err
	}

	allowed := AllowedProperties()
	defaultSource := DetectSource(taskName)

	var accepted []rawReview
	rejectedBatches := 0
	for _, batch := range batches {
		place := batch.PlaceName
		if place == "" {
			place = taskName
		}
		if !IsPropertyAllowed(place, allowed) {
			log.Printf("webhook batch dropped by whitelist (place: %q, reviews: %d)", place, len(batch.Reviews))
			rejectedBatches++
			continue
		}
		accepted = append(accepted, batch.Reviews...)
	}

	if len(accepted) == 0 && rejectedBatches > 0 {
		return IngestResult{Rejected: true, Reason: "place does not match any allowed property"}, nil
	}

	result := IngestResult{Total: len(accepted)}
	var created []models.Review

	for _, raw := range accepted {
		review := normalizeReview(raw, defaultSource)

		stored, duplicate, err := storeReview(db, review)
		if err != nil {
			log.Printf("review insert failed (reviewer: %s): %v", review.ReviewerName, err)
			continue
		}
		if duplicate {
			result.Skipped++
			continue
		}

		result.Imported++
		EmitReviewNotification(db, *stored)
		created = append(created, *stored)
	}

	draftAndQueue(ctx, db, drafter, created)

	log.Printf("webhook processed: imported=%d skipped=%d total=%d", result.Imported, result.Skipped, result.Total)
	return result, nil
}

func normalizeReview(raw rawReview, defaultSource string) models.Review {
	name := raw.AuthorTitle
	if name == "" {
		name = raw.ReviewerName
	}
	if name == "" {
		name = "Anonymous"
	}

	rating := int(raw.ReviewRating)
	if rating == 0 {
		rating = int(raw.Rating)
	}
	if rating < 1 || rating > 5 {
		rating = 5
	}

	sentiment := models.SentimentNeutral
	if rating >= 4 {
		sentiment = models.SentimentPositive
	} else if rating <= 2 {
		sentiment = models.SentimentNegative
	}

	content := raw.ReviewText
	if content == "" {
		content = raw.Text
	}

	language := raw.ReviewLanguage
	if language == "" {
		language = "en"
	}

	source := raw.Source
	if source == "" {
		source = defaultSource
	}

	var replyDate *time.Time
	if raw.OwnerAnswerAt != "" {
		if t, err := parseDateString(raw.OwnerAnswerAt); err == nil {
			replyDate = &t
		}
	}

	return models.Review{
		ReviewerName: name,
		Source:       source,
		ExternalID:   raw.ReviewID,
		Rating:       rating,
		Content:      content,
		Sentiment:    sentiment,
		Language:     language,
		HasReply:     raw.OwnerAnswer != "",
		ReplyContent: raw.OwnerAnswer,
		ReplyDate:    replyDate,
		ReviewDate:   parseReviewDate(raw),
	}
}

// parseReviewDate picks the best available date field: an ISO-ish datetime
// string, then a unix-seconds timestamp, then now.
func parseReviewDate(raw rawReview) time.Time {
	if raw.DatetimeUTC != "" {
		if t, err := parseDateString(raw.DatetimeUTC); err == nil {
			return t
		}
	}
	if raw.Timestamp > 0 {
		return time.Unix(raw.Timestamp, 0).UTC()
	}
	return time.Now()
}

func parseDateString(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format: " + s)
}

// storeReview persists a review unless its natural key is already present.
// Re-ingestion of a seen key is a no-op, never an update. The check-then-
// insert is not transactional; the unique natural-key index turns a
// concurrent double delivery into a constraint violation, counted as seen.
func storeReview(db *gorm.DB, review models.Review) (*models.Review, bool, error) {
	query := db.Model(&models.Review{})
	if review.ExternalID != "" {
		query = query.Where("external_id = ?", review.ExternalID)
	} else {
		query = query.Where("reviewer_name = ? AND source = ?", review.ReviewerName, review.Source)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, true, nil
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	if err := db.Create(&review).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return &review, false, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

const (
	draftConcurrency = 5
	draftChunkPause  = 500 * time.Millisecond
)

// draftAndQueue produces a draft reply and a pending approval task for each
// newly stored review. This is best-effort: a drafting or task failure
// leaves the review in place and is only logged. Fan-out is bounded and
// chunks are spaced out to respect the generative API's rate limits.
func draftAndQueue(ctx context.Context, db *gorm.DB, drafter *Drafter, reviews []models.Review) {
	for start := 0; start < len(reviews); start += draftConcurrency {
		end := start + draftConcurrency
		if end > len(reviews) {
			end = len(reviews)
		}

		var wg sync.WaitGroup
		for _, review := range reviews[start:end] {
			wg.Add(1)
			go func(review models.Review) {
				defer wg.Done()
				draft := drafter.DraftReply(ctx, review)
				if _, err := CreateReviewResponseTask(db, review, draft); err != nil {
					log.Printf("approval task create failed (review id: %d): %v", review.ID, err)
				}
			}(review)
		}
		wg.Wait()

		if end < len(reviews) {
			time.Sleep(draftChunkPause)
		}
	}
}
