package memory

import (
	"math"

	"github.com/lifehub/studycore/internal/domain"
)

const (
	curveDecay  = -0.5
	curveFactor = 19.0 / 81.0
)

// FSRSParams holds the weights of the FSRS-4.5 memory model.
type FSRSParams struct {
	InitialStability     [4]float64 // stability after the first review, indexed by grade-1
	InitialDifficulty    float64    // difficulty of a card first rated Good
	DifficultyGradeScale float64    // difficulty change per grade on the first review
	DifficultyStep       float64    // difficulty change per grade on later reviews
	MeanReversion        float64    // pull of difficulty back towards the Good baseline
	RecallGrowth         float64    // log-scale of the stability increase after recall
	StabilityDecay       float64    // how much high stability damps further growth
	RetrievabilityGain   float64    // extra growth for reviews at low retrievability
	ForgetScale          float64    // post-lapse stability scale
	ForgetDifficulty     float64    // post-lapse difficulty exponent
	ForgetStability      float64    // post-lapse stability exponent
	ForgetRetrievability float64    // post-lapse retrievability effect
	HardPenalty          float64    // multiplier on growth for Hard
	EasyBonus            float64    // multiplier on growth for Easy
	DesiredRetention     float64    // target recall probability at the due date
}

// DefaultFSRSParams returns the published FSRS-4.5 default weights.
func DefaultFSRSParams() *FSRSParams {
	return &FSRSParams{
		InitialStability:     [4]float64{0.4872, 1.4003, 3.7145, 13.8206},
		InitialDifficulty:    5.1618,
		DifficultyGradeScale: 1.2298,
		DifficultyStep:       0.8975,
		MeanReversion:        0.031,
		RecallGrowth:         1.6474,
		StabilityDecay:       0.1367,
		RetrievabilityGain:   1.0461,
		ForgetScale:          2.1072,
		ForgetDifficulty:     0.0793,
		ForgetStability:      0.3246,
		ForgetRetrievability: 1.587,
		HardPenalty:          0.2272,
		EasyBonus:            2.8755,
		DesiredRetention:     0.9,
	}
}

// FSRS schedules by a continuous stability/difficulty model. The ease factor is not used.
type FSRS struct {
	Params *FSRSParams
}

func NewFSRS(params *FSRSParams) *FSRS {
	if params == nil {
		params = DefaultFSRSParams()
	}
	return &FSRS{Params: params}
}

func (f *FSRS) Name() domain.AlgorithmType { return domain.AlgorithmFSRS }

func (f *FSRS) Update(s State, rating domain.Rating, elapsed float64) State {
	p := f.Params
	grade := float64(rating.Grade())

	if s.isFirstReview() {
		s.Stability = p.InitialStability[rating.Grade()-1]
		s.Difficulty = p.initialDifficulty(grade)
		s.Retrievability = 0
		s.IntervalDays = p.intervalFor(s.Stability)
		return s
	}

	stability := math.Max(s.Stability, 0.1)
	difficulty := s.Difficulty
	if difficulty <= 0 {
		difficulty = p.initialDifficulty(3)
	}
	r := forgettingCurve(elapsed, stability)

	if rating == domain.Again {
		s.Stability = math.Min(stability, p.forgetStability(stability, difficulty, r))
	} else {
		s.Stability = p.recallStability(stability, difficulty, r, rating)
	}
	s.Difficulty = p.nextDifficulty(difficulty, grade)
	s.Retrievability = r
	s.IntervalDays = p.intervalFor(s.Stability)
	return s
}

func (p *FSRSParams) initialDifficulty(grade float64) float64 {
	return clamp(p.InitialDifficulty-(grade-3)*p.DifficultyGradeScale, 1, 10)
}

func (p *FSRSParams) nextDifficulty(d, grade float64) float64 {
	next := d - p.DifficultyStep*(grade-3)
	return clamp(p.MeanReversion*p.initialDifficulty(3)+(1-p.MeanReversion)*next, 1, 10)
}

// recallStability applies S' = S * (1 + e^w8 * (11-D) * S^-w9 * (e^(w10*(1-R)) - 1) * hard * easy).
// Reviews made before the card has decayed to the desired retention are treated as if
// they happened at it, so early reviews still strengthen the memory.
func (p *FSRSParams) recallStability(s, d, r float64, rating domain.Rating) float64 {
	r = math.Min(r, p.DesiredRetention)
	factor := math.Exp(p.RecallGrowth) * (11 - d) * math.Pow(s, -p.StabilityDecay)
	multiplier := math.Exp(p.RetrievabilityGain*(1-r)) - 1

	bonus := 1.0
	switch rating {
	case domain.Hard:
		bonus = p.HardPenalty
	case domain.Easy:
		bonus = p.EasyBonus
	}
	return s * (1 + factor*multiplier*bonus)
}

func (p *FSRSParams) forgetStability(s, d, r float64) float64 {
	return p.ForgetScale * math.Pow(d, -p.ForgetDifficulty) *
		(math.Pow(s+1, p.ForgetStability) - 1) *
		math.Exp(p.ForgetRetrievability*(1-r))
}

// intervalFor is the number of days until retrievability falls to the desired retention.
func (p *FSRSParams) intervalFor(stability float64) float64 {
	return stability / curveFactor * (math.Pow(p.DesiredRetention, 1/curveDecay) - 1)
}

// forgettingCurve is R(t, S) = (1 + 19/81 * t/S)^-0.5.
func forgettingCurve(elapsed, stability float64) float64 {
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+curveFactor*elapsed/stability, curveDecay)
}
