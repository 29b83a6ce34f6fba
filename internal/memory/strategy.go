package memory

import (
	"math"
	"time"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
)

// ScheduleStrategy computes interval, ease and memory-strength updates for one review.
// Stage, lapse and date bookkeeping is done by Apply, so implementations only touch
// IntervalDays, EaseFactor, Stability, Difficulty and Retrievability.
type ScheduleStrategy interface {
	Name() domain.AlgorithmType
	Update(state State, rating domain.Rating, elapsedDays float64) State
}

// StrategyFor returns the strategy configured by algorithm.
func StrategyFor(algorithm domain.AlgorithmType, desiredRetention float64) (ScheduleStrategy, error) {
	if !algorithm.Valid() {
		return nil, apperr.Validationf("algorithm_type", "unknown algorithm %q", algorithm)
	}
	if algorithm == domain.AlgorithmLeitner {
		return NewLeitner(), nil
	}
	params := DefaultFSRSParams()
	if desiredRetention > 0 && desiredRetention < 1 {
		params.DesiredRetention = desiredRetention
	}
	return NewFSRS(params), nil
}

// Apply returns the state after reviewing a card in state with rating at now.
// It has no side effects; the input state is left untouched.
func Apply(strategy ScheduleStrategy, state State, rating domain.Rating, now time.Time) (State, error) {
	if !rating.Valid() {
		return state, apperr.Validationf("rating", "unknown rating %q", rating)
	}
	now = now.UTC()
	prior := state
	if prior.EaseFactor <= 0 {
		prior.EaseFactor = domain.DefaultEaseFactor
	}

	next := strategy.Update(prior, rating, elapsedDays(prior.LastReviewAt, now))
	first := prior.isFirstReview()

	switch {
	case rating == domain.Again:
		// A failed first review still establishes the learning baseline before the lapse.
		next.Stage = domain.StageRelearning
		next.Lapses = prior.Lapses + 1
		if !first && prior.IntervalDays >= MinIntervalDays {
			next.IntervalDays = math.Min(next.IntervalDays, prior.IntervalDays)
		}
	case first:
		next.Stage = domain.StageLearning
	default:
		next.Stage = domain.StageReview
		if (rating == domain.Good || rating == domain.Easy) &&
			next.IntervalDays <= prior.IntervalDays && prior.IntervalDays < MaxIntervalDays {
			next.IntervalDays = math.Max(prior.IntervalDays*minGrowth, MinIntervalDays)
			if next.IntervalDays <= prior.IntervalDays {
				next.IntervalDays = prior.IntervalDays + MinIntervalDays
			}
		}
	}

	next.IntervalDays = clamp(next.IntervalDays, MinIntervalDays, MaxIntervalDays)
	next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor)
	next.ReviewCount = prior.ReviewCount + 1

	reviewed := now
	due := now.Add(Days(next.IntervalDays))
	next.LastReviewAt = &reviewed
	next.NextReviewAt = &due
	return next, nil
}

// Preview returns the state each rating would produce.
func Preview(strategy ScheduleStrategy, state State, now time.Time) map[domain.Rating]State {
	out := make(map[domain.Rating]State, 4)
	for _, r := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		next, _ := Apply(strategy, state, r, now)
		out[r] = next
	}
	return out
}

// Retrievability estimates the probability of recalling a card at asOf.
// Cards without a stability estimate report 0.
func Retrievability(state State, asOf time.Time) float64 {
	if state.Stability <= 0 || state.LastReviewAt == nil {
		return 0
	}
	return forgettingCurve(elapsedDays(state.LastReviewAt, asOf.UTC()), state.Stability)
}
