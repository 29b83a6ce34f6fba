package memory

import (
	"math"

	"github.com/lifehub/studycore/internal/domain"
)

// DefaultBoxes are the Leitner box intervals in days.
var DefaultBoxes = []float64{1, 3, 7, 14, 30, 60, 120, 240}

// Leitner moves cards through a fixed table of boxes and adjusts the SM-2 ease factor.
// Past the last box GOOD and EASY grow the interval by ease times a per-rating
// multiplier, while HARD grows it by its multiplier alone.
type Leitner struct {
	Boxes            []float64
	EaseDelta        map[domain.Rating]float64
	RatingMultiplier map[domain.Rating]float64
}

func NewLeitner() *Leitner {
	return &Leitner{
		Boxes: DefaultBoxes,
		EaseDelta: map[domain.Rating]float64{
			domain.Again: -0.20,
			domain.Hard:  -0.15,
			domain.Good:  0,
			domain.Easy:  0.15,
		},
		RatingMultiplier: map[domain.Rating]float64{
			domain.Hard: 1.2,
			domain.Good: 1.0,
			domain.Easy: 1.3,
		},
	}
}

func (l *Leitner) Name() domain.AlgorithmType { return domain.AlgorithmLeitner }

func (l *Leitner) Update(s State, rating domain.Rating, _ float64) State {
	s.EaseFactor = math.Max(MinEaseFactor, s.EaseFactor+l.EaseDelta[rating])

	if s.isFirstReview() {
		s.IntervalDays = l.Boxes[0]
		if rating == domain.Easy {
			s.IntervalDays = l.Boxes[1]
		}
		return s
	}

	box := l.box(s.IntervalDays)
	switch rating {
	case domain.Again:
		s.IntervalDays = l.Boxes[0]
	case domain.Hard:
		s.IntervalDays = math.Max(s.IntervalDays, l.Boxes[box])
		if last := l.Boxes[len(l.Boxes)-1]; s.IntervalDays >= last {
			s.IntervalDays *= l.RatingMultiplier[rating]
		}
	case domain.Good:
		s.IntervalDays = l.promote(s, box, 1, rating)
	case domain.Easy:
		s.IntervalDays = l.promote(s, box, 2, rating)
	}
	return s
}

// box is the index of the highest box whose interval does not exceed days.
func (l *Leitner) box(days float64) int {
	idx := 0
	for i, b := range l.Boxes {
		if b <= days {
			idx = i
		}
	}
	return idx
}

func (l *Leitner) promote(s State, box, steps int, rating domain.Rating) float64 {
	if target := box + steps; target < len(l.Boxes) {
		return l.Boxes[target]
	}
	return s.IntervalDays * s.EaseFactor * l.RatingMultiplier[rating]
}
