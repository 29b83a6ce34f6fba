package memory

import (
	"testing"

	"github.com/lifehub/studycore/internal/domain"
)

func TestLeitnerUpdate(t *testing.T) {
	l := NewLeitner()
	review := func(interval float64) State {
		return State{Stage: domain.StageReview, IntervalDays: interval, EaseFactor: 2.5, ReviewCount: 3}
	}

	testCases := []struct {
		name         string
		state        State
		rating       domain.Rating
		wantInterval float64
		wantEase     float64
	}{
		{"first good", State{Stage: domain.StageNew, EaseFactor: 2.5}, domain.Good, 1, 2.5},
		{"first easy", State{Stage: domain.StageNew, EaseFactor: 2.5}, domain.Easy, 3, 2.65},
		{"good promotes one box", review(3), domain.Good, 7, 2.5},
		{"easy promotes two boxes", review(3), domain.Easy, 14, 2.65},
		{"hard stays in box", review(3), domain.Hard, 3, 2.35},
		{"between boxes good", review(5), domain.Good, 7, 2.5},
		{"again resets", review(30), domain.Again, 1, 2.3},
		{"past last box", review(240), domain.Good, 600, 2.5},
		{"hard past last box", review(240), domain.Hard, 288, 2.35},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := l.Update(tc.state, tc.rating, 0)
			if diff := got.IntervalDays - tc.wantInterval; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected interval %.2f, got %.2f", tc.wantInterval, got.IntervalDays)
			}
			if diff := got.EaseFactor - tc.wantEase; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Expected ease %.2f, got %.2f", tc.wantEase, got.EaseFactor)
			}
		})
	}
}

func TestLeitnerRatingsOrderPastLastBox(t *testing.T) {
	l := NewLeitner()
	for _, ease := range []float64{MinEaseFactor, 2.5, 3.0} {
		s := State{Stage: domain.StageReview, IntervalDays: 300, EaseFactor: ease, ReviewCount: 9}
		hard := l.Update(s, domain.Hard, 0).IntervalDays
		good := l.Update(s, domain.Good, 0).IntervalDays
		easy := l.Update(s, domain.Easy, 0).IntervalDays
		if !(easy > good && good > hard && hard > s.IntervalDays) {
			t.Errorf("ease %.2f: expected EASY > GOOD > HARD > %.0f, got %.1f, %.1f, %.1f", ease, s.IntervalDays, easy, good, hard)
		}
	}
}

func TestLeitnerEaseFloor(t *testing.T) {
	l := NewLeitner()
	s := State{Stage: domain.StageReview, IntervalDays: 7, EaseFactor: 1.35, ReviewCount: 5}
	got := l.Update(s, domain.Again, 0)
	if got.EaseFactor != MinEaseFactor {
		t.Errorf("Expected ease to stop at %.2f, got %.2f", MinEaseFactor, got.EaseFactor)
	}
}

func TestLeitnerLeavesFSRSFieldsAlone(t *testing.T) {
	l := NewLeitner()
	got := l.Update(State{Stage: domain.StageNew, EaseFactor: 2.5}, domain.Good, 0)
	if got.Stability != 0 || got.Difficulty != 0 || got.Retrievability != 0 {
		t.Errorf("Expected FSRS fields at defaults, got %+v", got)
	}
}
