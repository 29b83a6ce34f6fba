// Package memory updates a flashcard's memory state after a review.
//
// The shared policy (stage transitions, lapses, interval floor and ceiling, due date)
// lives in Apply. How intervals, ease, stability and difficulty evolve is delegated to
// a ScheduleStrategy chosen from the user's study settings.
package memory

import (
	"math"
	"time"

	"github.com/lifehub/studycore/internal/domain"
)

const (
	MinEaseFactor   = 1.3
	MinIntervalDays = 1.0
	MaxIntervalDays = 36500.0

	// minGrowth is applied when a strategy fails to lengthen the interval after a
	// successful review of a card that is already being learned.
	minGrowth = 1.1
)

// State is the scheduling-relevant part of a flashcard.
type State struct {
	Stage          domain.Stage
	IntervalDays   float64
	EaseFactor     float64
	Stability      float64
	Difficulty     float64
	Retrievability float64
	Lapses         int
	ReviewCount    int
	LastReviewAt   *time.Time
	NextReviewAt   *time.Time
}

// FromCard extracts the memory state of c.
func FromCard(c domain.Flashcard) State {
	return State{
		Stage:          c.Stage,
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EaseFactor,
		Stability:      c.Stability,
		Difficulty:     c.Difficulty,
		Retrievability: c.Retrievability,
		Lapses:         c.Lapses,
		ReviewCount:    c.ReviewCount,
		LastReviewAt:   c.LastReviewAt,
		NextReviewAt:   c.NextReviewAt,
	}
}

// Into copies s onto c and returns the updated card. c itself is not modified.
func (s State) Into(c domain.Flashcard) domain.Flashcard {
	c.Stage = s.Stage
	c.IntervalDays = s.IntervalDays
	c.EaseFactor = s.EaseFactor
	c.Stability = s.Stability
	c.Difficulty = s.Difficulty
	c.Retrievability = s.Retrievability
	c.Lapses = s.Lapses
	c.ReviewCount = s.ReviewCount
	c.LastReviewAt = s.LastReviewAt
	c.NextReviewAt = s.NextReviewAt
	return c
}

func (s State) isFirstReview() bool {
	return s.Stage == domain.StageNew || s.Stage == ""
}

// Days converts a fractional day count into a duration.
func Days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}

func elapsedDays(last *time.Time, now time.Time) float64 {
	if last == nil {
		return 0
	}
	return math.Max(0, now.Sub(*last).Hours()/24)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
