package domain

import "time"

// AlgorithmType selects the scheduling strategy used by the memory model.
type AlgorithmType string

const (
	AlgorithmLeitner AlgorithmType = "LEITNER"
	AlgorithmFSRS    AlgorithmType = "FSRS_VECTO"
)

func (a AlgorithmType) Valid() bool {
	return a == AlgorithmLeitner || a == AlgorithmFSRS
}

// StudySettings are the per-user knobs read at session start.
type StudySettings struct {
	UserID               string        `db:"user_id" validate:"required"`
	Algorithm            AlgorithmType `db:"algorithm_type" validate:"required,oneof=LEITNER FSRS_VECTO"`
	NewCardsPerDay       int           `db:"new_cards_per_day" validate:"gte=0"`
	MaxReviewsPerSession int           `db:"max_reviews_per_session" validate:"gte=0"`
	DesiredRetention     float64       `db:"desired_retention" validate:"gt=0,lt=1"`
	UpdatedAt            time.Time     `db:"updated_at"`
}
