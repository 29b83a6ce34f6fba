package domain

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the learning stage of a flashcard.
type Stage string

const (
	StageNew        Stage = "NEW"
	StageLearning   Stage = "LEARNING"
	StageReview     Stage = "REVIEW"
	StageRelearning Stage = "RELEARNING"
)

// Rating is the learner's response to a card review.
type Rating string

const (
	Again Rating = "AGAIN"
	Hard  Rating = "HARD"
	Good  Rating = "GOOD"
	Easy  Rating = "EASY"
)

var gradeRatings = map[string]Rating{
	"1": Again,
	"2": Hard,
	"3": Good,
	"4": Easy,
}

// ParseRating accepts either the rating name (case-insensitive) or the 1-4 grade
// used by the review prompt.
func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(s)
	if r, ok := gradeRatings[s]; ok {
		return r, nil
	}
	r := Rating(strings.ToUpper(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown rating %q", s)
	}
	return r, nil
}

func (r Rating) Valid() bool {
	switch r {
	case Again, Hard, Good, Easy:
		return true
	}
	return false
}

// Grade is the 1-4 numeric form of the rating (0 when invalid).
func (r Rating) Grade() int {
	switch r {
	case Again:
		return 1
	case Hard:
		return 2
	case Good:
		return 3
	case Easy:
		return 4
	}
	return 0
}

// CardDraft is card content read from a deck source before it is stored.
type CardDraft struct {
	Front   string
	Back    string
	Context string
	Hash    string
}

// Flashcard is a single card owned by a deck together with its memory state.
type Flashcard struct {
	ID             string     `db:"id"`
	DeckID         string     `db:"deck_id"`
	Front          string     `db:"front"`
	Back           string     `db:"back"`
	Context        string     `db:"context"`
	ContentHash    string     `db:"content_hash"`
	Stage          Stage      `db:"stage"`
	NextReviewAt   *time.Time `db:"next_review_at"`
	IntervalDays   float64    `db:"interval_days"`
	EaseFactor     float64    `db:"ease_factor"`
	ReviewCount    int        `db:"review_count"`
	Lapses         int        `db:"lapses"`
	Stability      float64    `db:"stability"`
	Difficulty     float64    `db:"difficulty"`
	Retrievability float64    `db:"retrievability"`
	LastReviewAt   *time.Time `db:"last_review_at"`
	Suspended      bool       `db:"suspended"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

const DefaultEaseFactor = 2.5

// NewFlashcard returns an unreviewed card for the given deck.
func NewFlashcard(deckID string, draft CardDraft, now time.Time) Flashcard {
	return Flashcard{
		DeckID:      deckID,
		Front:       draft.Front,
		Back:        draft.Back,
		Context:     draft.Context,
		ContentHash: draft.Hash,
		Stage:       StageNew,
		EaseFactor:  DefaultEaseFactor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsNew reports whether the card has never been reviewed.
func (c Flashcard) IsNew() bool {
	return c.Stage == StageNew && c.ReviewCount == 0
}

// Deck groups flashcards. Parent optionally links it to a subject, book, course or project.
type Deck struct {
	ID        string
	UserID    string
	Name      string
	Parent    Parent
	Source    string
	CreatedAt time.Time
}
