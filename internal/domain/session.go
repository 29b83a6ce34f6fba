package domain

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionCancelled  SessionStatus = "CANCELLED"
)

// ReviewSession is a bounded batch of reviews started by a user.
type ReviewSession struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	DeckID        *string       `db:"deck_id"`
	Algorithm     AlgorithmType `db:"algorithm_type"`
	Status        SessionStatus `db:"status"`
	StartedAt     time.Time     `db:"started_at"`
	FinishedAt    *time.Time    `db:"finished_at"`
	TotalCards    int           `db:"total_cards"`
	CardsReviewed int           `db:"cards_reviewed"`
	CardsCorrect  int           `db:"cards_correct"`
	Score         float64       `db:"score"`
}

func (s ReviewSession) Active() bool {
	return s.Status == SessionInProgress
}

// SessionCardState tracks a card inside the due-set snapshot of a session.
type SessionCardState string

const (
	SessionCardPending  SessionCardState = "PENDING"
	SessionCardReviewed SessionCardState = "REVIEWED"
	SessionCardRequeued SessionCardState = "REQUEUED"
)

type SessionCard struct {
	SessionID   string           `db:"session_id"`
	FlashcardID string           `db:"flashcard_id"`
	Position    int              `db:"position"`
	State       SessionCardState `db:"state"`
}

// ReviewLog is an append-only record of one response.
type ReviewLog struct {
	ID                string    `db:"id"`
	SessionID         string    `db:"session_id"`
	FlashcardID       string    `db:"flashcard_id"`
	Rating            Rating    `db:"rating"`
	TimeSpentSeconds  int       `db:"time_spent_seconds"`
	ReviewedAt        time.Time `db:"reviewed_at"`
	PriorStage        Stage     `db:"prior_stage"`
	PriorIntervalDays float64   `db:"prior_interval_days"`
	IntervalDays      float64   `db:"interval_days"`
}
