package models

import "time"

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Review is a guest review ingested from an external platform. The tuple
// (reviewer_name, source, external_id) is the natural key used for dedup;
// the unique index turns a concurrent double delivery into a constraint
// violation instead of a duplicate row.
type Review struct {
	ID           uint   `gorm:"primaryKey"`
	ReviewerName string `gorm:"index:idx_review_natural_key,unique"`
	Source       string `gorm:"index:idx_review_natural_key,unique"`
	ExternalID   string `gorm:"index:idx_review_natural_key,unique"`
	Rating       int
	Content      string
	Sentiment    string // derived from rating, never set independently
	Language     string
	HasReply     bool
	ReplyContent string
	ReplyDate    *time.Time
	ReviewDate   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
