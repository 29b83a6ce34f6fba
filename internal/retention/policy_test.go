package retention

import (
	"testing"

	"github.com/lifehub/studycore/internal/domain"
)

func TestEvaluate(t *testing.T) {
	p := DefaultPolicy()
	testCases := []struct {
		name   string
		status domain.TopicStatus
		recent []int
		want   domain.TopicStatus
	}{
		{"no ratings", domain.TopicToLearn, nil, domain.TopicToLearn},
		{"first rating starts learning", domain.TopicToLearn, []int{5}, domain.TopicInProgress},
		{"window not full", domain.TopicInProgress, []int{1, 1}, domain.TopicInProgress},
		{"low average", domain.TopicInProgress, []int{1, 2, 2}, domain.TopicNeedsReview},
		{"average exactly at review threshold", domain.TopicInProgress, []int{2, 2, 2}, domain.TopicNeedsReview},
		{"middle average keeps status", domain.TopicNeedsReview, []int{3, 3, 3}, domain.TopicNeedsReview},
		{"recovered from needs review", domain.TopicNeedsReview, []int{4, 4, 4}, domain.TopicMastered},
		{"high average while in progress", domain.TopicInProgress, []int{5, 5, 5}, domain.TopicInProgress},
		{"high average from to learn", domain.TopicToLearn, []int{5, 5, 5}, domain.TopicInProgress},
		{"mastered stays mastered", domain.TopicMastered, []int{5, 5, 5}, domain.TopicMastered},
		{"mastered topic slips", domain.TopicMastered, []int{1, 2, 3}, domain.TopicNeedsReview},
		{"only the window counts", domain.TopicNeedsReview, []int{5, 5, 5, 1, 1, 1}, domain.TopicMastered},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.status, tc.recent, p); got != tc.want {
				t.Errorf("Expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEvaluateCustomWindow(t *testing.T) {
	p := Policy{Window: 1, ReviewAtOrBelow: 2, MasterAtOrAbove: 4}
	if got := Evaluate(domain.TopicToLearn, []int{1}, p); got != domain.TopicNeedsReview {
		t.Errorf("Expected a single low rating to need review with window 1, got %s", got)
	}
	if got := Evaluate(domain.TopicNeedsReview, []int{5}, p); got != domain.TopicMastered {
		t.Errorf("Expected a single high rating to master with window 1, got %s", got)
	}
}
