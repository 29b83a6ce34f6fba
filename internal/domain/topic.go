package domain

import "time"

type TopicStatus string

const (
	TopicToLearn     TopicStatus = "TO_LEARN"
	TopicInProgress  TopicStatus = "IN_PROGRESS"
	TopicNeedsReview TopicStatus = "NEEDS_REVIEW"
	TopicMastered    TopicStatus = "MASTERED"
)

// Topic is a learning unit tracked by qualitative retention ratings.
type Topic struct {
	ID              string
	UserID          string
	Name            string
	Parent          Parent
	RetentionRating *int
	Status          TopicStatus
	LastReviewedAt  *time.Time
	CreatedAt       time.Time
}

// RetentionLog is one retention observation for a topic.
type RetentionLog struct {
	ID          string    `db:"id"`
	TopicID     string    `db:"topic_id"`
	Rating      int       `db:"rating"`
	EvaluatedAt time.Time `db:"evaluated_at"`
}

const (
	MinRetentionRating = 1
	MaxRetentionRating = 5
)
