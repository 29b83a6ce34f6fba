// Package retention tracks qualitative 1-5 retention ratings per topic and moves
// topics between TO_LEARN, IN_PROGRESS, NEEDS_REVIEW and MASTERED.
package retention

import "github.com/lifehub/studycore/internal/domain"

// Policy holds the thresholds applied to the trailing window of ratings.
type Policy struct {
	Window          int     `koanf:"window" validate:"min=1"`
	ReviewAtOrBelow float64 `koanf:"review_at_or_below" validate:"gte=1,lte=5"`
	MasterAtOrAbove float64 `koanf:"master_at_or_above" validate:"gte=1,lte=5,gtfield=ReviewAtOrBelow"`
}

func DefaultPolicy() Policy {
	return Policy{Window: 3, ReviewAtOrBelow: 2.0, MasterAtOrAbove: 4.0}
}

// Evaluate returns the status of a topic given its current status and its ratings,
// newest first. The window thresholds only apply once the window is full, and only a
// topic that needed review can become MASTERED.
func Evaluate(status domain.TopicStatus, recent []int, p Policy) domain.TopicStatus {
	if len(recent) == 0 {
		return status
	}
	if status == domain.TopicToLearn || status == "" {
		status = domain.TopicInProgress
	}
	if len(recent) < p.Window {
		return status
	}
	avg := average(recent[:p.Window])
	switch {
	case avg <= p.ReviewAtOrBelow:
		return domain.TopicNeedsReview
	case avg >= p.MasterAtOrAbove && status == domain.TopicNeedsReview:
		return domain.TopicMastered
	}
	return status
}

func average(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
